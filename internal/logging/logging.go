// Package logging builds the process zap logger and carries a request id
// through contexts.
package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const RequestIDKey = "request_id"

// Config selects encoder, level and destination.
type Config struct {
	Level  string
	Format string // json | console
	Output string // stdout | stderr | file | <path>
	File   FileConfig
}

type FileConfig struct {
	Dir      string
	Filename string
	Rotate   bool
	MaxSize  int // megabytes
	MaxAge   time.Duration
	Compress bool
}

// New builds a logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	ws, err := buildWriteSyncer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create write syncer: %w", err)
	}
	core := zapcore.NewCore(buildEncoder(cfg.Format), ws, ParseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func buildEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if strings.EqualFold(format, "json") {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func buildWriteSyncer(cfg Config) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	case "file":
		return buildFileWriteSyncer(cfg.File)
	default:
		return openFile(cfg.Output)
	}
}

func buildFileWriteSyncer(fc FileConfig) (zapcore.WriteSyncer, error) {
	if fc.Dir == "" || fc.Filename == "" {
		return nil, fmt.Errorf("file dir and filename are required when output is 'file'")
	}
	if err := os.MkdirAll(fc.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile := filepath.Join(fc.Dir, fc.Filename+".log")
	if fc.Rotate {
		maxSize := fc.MaxSize
		if maxSize <= 0 {
			maxSize = 100
		}
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:  logFile,
			MaxSize:   maxSize,
			MaxAge:    int(fc.MaxAge.Hours() / 24),
			Compress:  fc.Compress,
			LocalTime: true,
		}), nil
	}
	return openFile(logFile)
}

func openFile(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return zapcore.AddSync(f), nil
}

// ParseLevel maps a level name to a zap level. Unknown names are info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

type ctxKey struct{}

// WithRequestID returns ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// NewRequestID returns a fresh random id.
func NewRequestID() string {
	return uuid.New().String()
}

// For returns log annotated with the request id in ctx, if any.
func For(ctx context.Context, log *zap.Logger) *zap.Logger {
	if id := RequestID(ctx); id != "" {
		return log.With(zap.String(RequestIDKey, id))
	}
	return log
}
