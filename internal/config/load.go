package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "PATIENTSTORE_"

// Load reads the YAML file at path, applies defaults, then PATIENTSTORE_*
// environment overrides, and validates the result. An empty path skips the
// file and starts from defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg, os.Getenv)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := getenv(envPrefix + key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	boolean := func(key string, dst *bool) {
		if v := getenv(envPrefix + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	dur("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	dur("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	dur("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	str("STORAGE_BACKEND", &cfg.Storage.Backend)
	str("STORAGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	str("STORAGE_POSTGRES_DSN", &cfg.Storage.Postgres.DSN)
	str("STORAGE_POSTGRES_SCHEMA", &cfg.Storage.Postgres.Schema)
	str("STORAGE_MYSQL_DSN", &cfg.Storage.MySQL.DSN)

	str("LOGGING_LEVEL", &cfg.Logging.Level)
	str("LOGGING_FORMAT", &cfg.Logging.Format)
	str("LOGGING_OUTPUT", &cfg.Logging.Output)

	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	boolean("TRACING_ENABLED", &cfg.Tracing.Enabled)
	str("TRACING_EXPORTER", &cfg.Tracing.Exporter)
}
