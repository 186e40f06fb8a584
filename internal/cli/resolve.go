package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nonibytes/patientstore/internal/config"
	"github.com/nonibytes/patientstore/patientstore"
	"github.com/nonibytes/patientstore/patientstore/storage"
	"github.com/nonibytes/patientstore/patientstore/storage/gormstore"
	"github.com/nonibytes/patientstore/patientstore/storage/postgres"
	"github.com/nonibytes/patientstore/patientstore/storage/sqlite"
)

// newAdapter maps a database/sql backend to its storage adapter. GORM
// backends have no adapter and return nil.
func newAdapter(cfg config.StorageConfig) storage.Adapter {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.New(cfg.SQLite.Path)
	case config.BackendSQLite3:
		return sqlite.NewWithDriver(cfg.SQLite.Path, sqlite.DriverMattn)
	case config.BackendPostgres:
		return postgres.New(cfg.Postgres.DSN, cfg.Postgres.Schema)
	default:
		return nil
	}
}

// OpenRepository opens the configured store. With create set the schema is
// created first (idempotent); otherwise an existing store is required.
func OpenRepository(ctx context.Context, cfg config.StorageConfig, log *zap.Logger, create bool) (patientstore.Repository, error) {
	opts := patientstore.DefaultStoreOptions()
	opts.Logger = log

	switch cfg.Backend {
	case config.BackendMySQL, config.BackendGormPostgres:
		dialect, dsn := gormstore.DialectMySQL, cfg.MySQL.DSN
		if cfg.Backend == config.BackendGormPostgres {
			dialect, dsn = gormstore.DialectPostgres, cfg.Postgres.DSN
		}
		db, err := gormstore.Open(dialect, dsn, gormstore.OpenOptions{
			Logger:        log,
			LogLevel:      "warn",
			SlowThreshold: cfg.SlowQueryThreshold,
		})
		if err != nil {
			return nil, patientstore.Wrap(patientstore.ErrIO, "connect to database", err)
		}
		repo := gormstore.New(db, opts)
		if create {
			if err := repo.AutoMigrate(ctx); err != nil {
				_ = repo.Close()
				return nil, err
			}
		}
		return repo, nil
	}

	adapter := newAdapter(cfg)
	if adapter == nil {
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
	if create {
		return patientstore.Create(ctx, adapter, opts)
	}
	return patientstore.Open(ctx, adapter, opts)
}
