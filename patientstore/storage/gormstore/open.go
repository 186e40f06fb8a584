package gormstore

import (
	"fmt"
	"time"

	mysqlcfg "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	mysqlDriver "gorm.io/driver/mysql"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// OpenOptions configures Open
type OpenOptions struct {
	Logger        *zap.Logger
	LogLevel      string
	SlowThreshold time.Duration
}

// Open connects GORM to dsn with the given dialect.
func Open(dialect Dialect, dsn string, opts OpenOptions) (*gorm.DB, error) {
	var d gorm.Dialector
	switch dialect {
	case DialectMySQL:
		normalized, err := NormalizeMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		d = mysqlDriver.New(mysqlDriver.Config{DSN: normalized})
	case DialectPostgres:
		d = gormpg.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm dialect %q", dialect)
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:                                   NewLogger(opts.Logger, opts.LogLevel, opts.SlowThreshold),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm %s: %w", dialect, err)
	}
	return db, nil
}

// NormalizeMySQLDSN forces parseTime and a UTC location so birth dates
// round-trip as time.Time without a zone shift.
func NormalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysqlcfg.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
