package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/nonibytes/patientstore/patientstore/storage"
	"github.com/nonibytes/patientstore/patientstore/storage/sqlbuilder"
)

type Adapter struct {
	DSN    string
	Schema string // used as dedicated schema via search_path
}

func New(dsn, schema string) *Adapter {
	return &Adapter{DSN: dsn, Schema: schema}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendPostgres }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle { return sqlbuilder.PlaceholderDollar }

func (a *Adapter) StoreID() string { return "postgres:" + a.Schema }

func (a *Adapter) Close() error { return nil }

func (a *Adapter) SQL() storage.SQL { return SQLTemplates }

var schemaNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validSchema(name string) error {
	if name == "" || !schemaNameRe.MatchString(name) {
		return fmt.Errorf("invalid postgres schema name %q (must match %s)", name, schemaNameRe.String())
	}
	return nil
}

func quoteIdent(ident string) string {
	// ident is validated to contain no quotes
	return `"` + ident + `"`
}

// connConfig parses the DSN and pins search_path to the store schema.
func (a *Adapter) connConfig() (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = make(map[string]string)
	}
	cfg.RuntimeParams["search_path"] = fmt.Sprintf("%s,public", quoteIdent(a.Schema))
	return cfg, nil
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	if err := validSchema(a.Schema); err != nil {
		return nil, err
	}

	// 1) Connect without search_path to ensure schema exists
	cfg0, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	db0 := stdlib.OpenDB(*cfg0)
	if err := db0.PingContext(ctx); err != nil {
		_ = db0.Close()
		return nil, err
	}
	if _, err := db0.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(a.Schema)); err != nil {
		_ = db0.Close()
		return nil, err
	}
	_ = db0.Close()

	// 2) Connect with search_path pinned to the schema
	cfg, err := a.connConfig()
	if err != nil {
		return nil, err
	}
	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) CreateStore(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}

	sqlt := a.SQL()
	if _, err := db.ExecContext(ctx, sqlt.SetMeta, "patientstore_magic", storage.Magic); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, sqlt.SetMeta, "patientstore_version", storage.SchemaVersion); err != nil {
		return err
	}
	return nil
}

func (a *Adapter) OpenStore(ctx context.Context, db *sql.DB) error {
	return storage.VerifyMeta(ctx, db, a.SQL())
}

func (a *Adapter) Optimize(ctx context.Context, db *sql.DB) error {
	// Best-effort: ANALYZE
	_, _ = db.ExecContext(ctx, "ANALYZE patients")
	return nil
}
