package cliopt

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/nonibytes/patientstore/internal/config"
)

func TestBindAndApply(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	g := DefaultGlobalOptions()
	BindGlobalFlags(fs, &g)
	if err := fs.Parse([]string{"--backend", "postgres", "--pg-dsn", "postgres://x/y", "--log-level", "debug"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := config.Default()
	g.Apply(cfg)
	if cfg.Storage.Backend != config.BackendPostgres || cfg.Storage.Postgres.DSN != "postgres://x/y" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
	if cfg.Storage.SQLite.Path != config.DefaultSQLitePath {
		t.Fatalf("unset flag overrode sqlite path: %q", cfg.Storage.SQLite.Path)
	}
}

func TestLoadValidatesAfterOverrides(t *testing.T) {
	t.Setenv("PATIENTSTORE_STORAGE_BACKEND", "")
	g := GlobalOptions{Backend: "mysql"}
	if _, err := g.Load(); err == nil {
		t.Fatal("expected validation error for mysql without dsn")
	}
}
