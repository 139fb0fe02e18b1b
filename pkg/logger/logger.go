// Package logger provides context-scoped structured logging on top of zap,
// with bridges for libraries that expect log/slog or the standard log package.
package logger

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

const (
	// DevelopmentEnvironment configures a verbose, human-readable console logger.
	DevelopmentEnvironment = "development"

	// ProductionEnvironment configures a JSON logger at info level.
	ProductionEnvironment = "production"
)

// defaultLogger is used when no logger is found in context.
var defaultLogger = zap.NewNop() //nolint: gochecknoglobals

// Setup initializes the default logger for the given environment. A non-empty
// level ("debug", "info", "warn", "error") overrides the environment default.
func Setup(environment string, level ...string) error {
	cfg := zap.NewDevelopmentConfig()
	if environment == ProductionEnvironment {
		cfg = zap.NewProductionConfig()
	}

	if len(level) > 0 && level[0] != "" {
		lvl, err := zap.ParseAtomicLevel(level[0])
		if err != nil {
			return fmt.Errorf("could not parse log level: %w", err)
		}
		cfg.Level = lvl
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("could not build logger: %w", err)
	}
	defaultLogger = l

	return nil
}

type key struct{}

// Get retrieves a logger from the provided context, falling back to the
// default logger.
func Get(ctx context.Context) *zap.Logger {
	if logger, _ := ctx.Value(key{}).(*zap.Logger); logger != nil {
		return logger
	}

	return defaultLogger
}

// WithLogger returns a context carrying the provided logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, key{}, logger)
}

// WithFields returns a context whose logger includes the given fields.
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}

// IsDebug checks if the logger in the context is configured at debug level.
func IsDebug(ctx context.Context) bool {
	return Get(ctx).Core().Enabled(zap.DebugLevel)
}

// Slog returns a log/slog logger writing to the context logger's core.
func Slog(ctx context.Context) *slog.Logger {
	return slog.New(zapslog.NewHandler(Get(ctx).Core()))
}

// StdLogger returns a standard library logger that writes every line at the
// given level, e.g. for http.Server.ErrorLog.
func StdLogger(ctx context.Context, level slog.Level) *log.Logger {
	return slog.NewLogLogger(zapslog.NewHandler(Get(ctx).Core()), level)
}

// Sync flushes any buffered log entries of the context logger.
func Sync(ctx context.Context) {
	_ = Get(ctx).Sync()
}

// Debug logs a message at debug level with the given fields.
func Debug(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Debug(msg, fields...)
}

// Info logs a message at info level with the given fields.
func Info(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Info(msg, fields...)
}

// Warn logs a message at warn level with the given fields.
func Warn(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Warn(msg, fields...)
}

// Error logs a message at error level with the given fields.
func Error(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Error(msg, fields...)
}

// Fatal logs a message at fatal level with the given fields and exits.
func Fatal(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Fatal(msg, fields...)
}
