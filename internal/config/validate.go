package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

// FieldError is a validation failure for one configuration field.
type FieldError struct {
	// Field is the dotted yaml path, e.g. "storage.backend".
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate returns a ValidationError listing every invalid field, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateTelemetry(cfg)...)
	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError
	if _, _, err := net.SplitHostPort(s.ListenAddress); err != nil {
		errs = append(errs, FieldError{"server.listen_address", fmt.Sprintf("invalid address %q", s.ListenAddress)})
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, FieldError{"server.read_timeout", "must not be negative"})
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, FieldError{"server.write_timeout", "must not be negative"})
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must not be negative"})
	}
	return errs
}

func validateStorage(st *StorageConfig) []FieldError {
	var errs []FieldError
	if !slices.Contains(Backends, st.Backend) {
		return append(errs, FieldError{"storage.backend", fmt.Sprintf("must be one of %s", strings.Join(Backends, ", "))})
	}
	switch st.Backend {
	case BackendSQLite, BackendSQLite3:
		if strings.TrimSpace(st.SQLite.Path) == "" {
			errs = append(errs, FieldError{"storage.sqlite.path", "is required"})
		}
	case BackendPostgres, BackendGormPostgres:
		if strings.TrimSpace(st.Postgres.DSN) == "" {
			errs = append(errs, FieldError{"storage.postgres.dsn", "is required"})
		}
	case BackendMySQL:
		if strings.TrimSpace(st.MySQL.DSN) == "" {
			errs = append(errs, FieldError{"storage.mysql.dsn", "is required"})
		}
	}
	return errs
}

func validateLogging(l *LoggingConfig) []FieldError {
	var errs []FieldError
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		errs = append(errs, FieldError{"logging.level", fmt.Sprintf("unknown level %q", l.Level)})
	}
	switch strings.ToLower(l.Format) {
	case "json", "console":
	default:
		errs = append(errs, FieldError{"logging.format", "must be json or console"})
	}
	if strings.EqualFold(l.Output, "file") && (l.File.Dir == "" || l.File.Filename == "") {
		errs = append(errs, FieldError{"logging.file", "dir and filename are required when output is file"})
	}
	return errs
}

func validateTelemetry(cfg *Config) []FieldError {
	var errs []FieldError
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{"metrics.path", "must start with /"})
	}
	tr := cfg.Tracing
	if tr.SampleRatio < 0 || tr.SampleRatio > 1 {
		errs = append(errs, FieldError{"tracing.sample_ratio", "must be within [0, 1]"})
	}
	switch tr.Exporter {
	case "stdout", "none":
	default:
		errs = append(errs, FieldError{"tracing.exporter", "must be stdout or none"})
	}
	return errs
}
