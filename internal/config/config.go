// Package config loads the patientstore YAML configuration.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// ListenAddress is "host:port". Default: "127.0.0.1:8080"
	ListenAddress   string        `yaml:"listen_address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Storage backends.
const (
	BackendSQLite       = "sqlite"  // modernc.org/sqlite
	BackendSQLite3      = "sqlite3" // mattn/go-sqlite3
	BackendPostgres     = "postgres"
	BackendMySQL        = "mysql"         // gorm
	BackendGormPostgres = "gorm-postgres" // gorm
)

// Backends lists every accepted storage backend.
var Backends = []string{BackendSQLite, BackendSQLite3, BackendPostgres, BackendMySQL, BackendGormPostgres}

// StorageConfig selects and configures the patient store.
type StorageConfig struct {
	// Backend is one of Backends. Default: "sqlite"
	Backend  string         `yaml:"backend"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	MySQL    MySQLConfig    `yaml:"mysql"`

	// SlowQueryThreshold is reported by the gorm logger. Default: 200ms
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
}

type SQLiteConfig struct {
	// Path of the database file. Default: "patients.db"
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
	// Schema holds the patientstore tables. Default: "patientstore"
	Schema string `yaml:"schema"`
}

type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// Level: debug, info, warn, error. Default: "info"
	Level string `yaml:"level"`
	// Format: json or console. Default: "json"
	Format string `yaml:"format"`
	// Output: stdout, stderr, file or a file path. Default: "stdout"
	Output string            `yaml:"output"`
	File   LoggingFileConfig `yaml:"file"`
}

type LoggingFileConfig struct {
	Dir      string        `yaml:"dir"`
	Filename string        `yaml:"filename"`
	Rotate   bool          `yaml:"rotate"`
	MaxSize  int           `yaml:"max_size_mb"`
	MaxAge   time.Duration `yaml:"max_age"`
	Compress bool          `yaml:"compress"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path of the scrape endpoint. Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig configures the OpenTelemetry tracer.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
	// Exporter: stdout or none. Default: "stdout"
	Exporter string `yaml:"exporter"`
	Pretty   bool   `yaml:"pretty"`
}
