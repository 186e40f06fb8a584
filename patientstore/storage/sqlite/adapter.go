package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/nonibytes/patientstore/patientstore/storage"
	"github.com/nonibytes/patientstore/patientstore/storage/sqlbuilder"
)

// Driver names as registered by modernc.org/sqlite and
// github.com/mattn/go-sqlite3. The binary must import the one it uses.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: DriverModernc}
}

func NewWithDriver(path, driver string) *Adapter {
	return &Adapter{Path: path, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend {
	return storage.BackendSQLite
}

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

func (a *Adapter) StoreID() string {
	return a.Path
}

// dsn appends the busy timeout and foreign key settings in the syntax the
// selected driver understands.
func (a *Adapter) dsn() string {
	var params string
	switch a.DriverName {
	case DriverMattn:
		params = "_busy_timeout=5000&_foreign_keys=on"
	default:
		params = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	if strings.Contains(a.Path, "?") {
		return a.Path + "&" + params
	}
	return a.Path + "?" + params
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(a.DriverName, a.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) SQL() storage.SQL {
	return SQLTemplates
}

func (a *Adapter) CreateStore(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode=WAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

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
	_, _ = db.ExecContext(ctx, "PRAGMA optimize")
	_, _ = db.ExecContext(ctx, "VACUUM")
	return nil
}
