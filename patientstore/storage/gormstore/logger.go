package gormstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger routes GORM's log output to zap.
type gormLogger struct {
	log           *zap.Logger
	logLevel      logger.LogLevel
	slowThreshold time.Duration
}

// NewLogger returns a GORM logger writing to log. level is one of silent,
// error, warn or info; anything else means warn.
func NewLogger(log *zap.Logger, level string, slow time.Duration) logger.Interface {
	if log == nil {
		log = zap.NewNop()
	}
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	return &gormLogger{log: log.Named("gorm"), logLevel: parseLogLevel(level), slowThreshold: slow}
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	nl := *l
	nl.logLevel = level
	return &nl
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.log.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.log.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.log.Sugar().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sqlStr, rows := fc()
	fields := []zap.Field{zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sqlStr)}
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.logLevel >= logger.Error:
		l.log.Error("query failed", append(fields, zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.logLevel >= logger.Warn:
		l.log.Warn("slow query", append(fields, zap.Duration("threshold", l.slowThreshold))...)
	case l.logLevel >= logger.Info:
		l.log.Debug("query", fields...)
	}
}
