package cliopt

import (
	"github.com/spf13/pflag"

	"github.com/nonibytes/patientstore/internal/config"
)

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
// Non-empty values override the loaded configuration.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command and per-command code.
type GlobalOptions struct {
	ConfigPath  string
	Backend     string
	SQLitePath  string
	PostgresDSN string
	PGSchema    string
	MySQLDSN    string
	LogLevel    string
	LogFormat   string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{}
}

func BindGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVarP(&g.ConfigPath, "config", "c", g.ConfigPath, "config file path (yaml)")
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|sqlite3|postgres|mysql|gorm-postgres")
	fs.StringVar(&g.SQLitePath, "sqlite-path", g.SQLitePath, "sqlite database file")
	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PGSchema, "pg-schema", g.PGSchema, "postgres schema holding the patient tables")
	fs.StringVar(&g.MySQLDSN, "mysql-dsn", g.MySQLDSN, "mysql DSN")
	fs.StringVar(&g.LogLevel, "log-level", g.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&g.LogFormat, "log-format", g.LogFormat, "log format: json|console")
}

// Load reads the configuration named by ConfigPath, applies the flag
// overrides and validates the result.
func (g GlobalOptions) Load() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	g.Apply(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g GlobalOptions) Apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Storage.Backend, g.Backend)
	set(&cfg.Storage.SQLite.Path, g.SQLitePath)
	set(&cfg.Storage.Postgres.DSN, g.PostgresDSN)
	set(&cfg.Storage.Postgres.Schema, g.PGSchema)
	set(&cfg.Storage.MySQL.DSN, g.MySQLDSN)
	set(&cfg.Logging.Level, g.LogLevel)
	set(&cfg.Logging.Format, g.LogFormat)
}
