package config

import (
	"time"

	"github.com/nonibytes/patientstore/patientstore"
)

const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultSQLitePath      = patientstore.DefaultSQLitePath
	DefaultPostgresSchema  = patientstore.DefaultPostgresSchema
	DefaultSlowQuery       = 200 * time.Millisecond
	DefaultMetricsPath     = "/metrics"
	DefaultServiceName     = "patientstore"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields. It is idempotent.
func ApplyDefaults(cfg *Config) {
	s := &cfg.Server
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}

	st := &cfg.Storage
	if st.Backend == "" {
		st.Backend = BackendSQLite
	}
	if st.SQLite.Path == "" {
		st.SQLite.Path = DefaultSQLitePath
	}
	if st.Postgres.Schema == "" {
		st.Postgres.Schema = DefaultPostgresSchema
	}
	if st.SlowQueryThreshold == 0 {
		st.SlowQueryThreshold = DefaultSlowQuery
	}

	l := &cfg.Logging
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
	if l.Output == "" {
		l.Output = "stdout"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	tr := &cfg.Tracing
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultServiceName
	}
	if tr.SampleRatio == 0 {
		tr.SampleRatio = 1
	}
	if tr.Exporter == "" {
		tr.Exporter = "stdout"
	}
}
