package logger

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

var log *slog.Logger

// Init configures the global logger. "development" gets a text handler at
// debug level, anything else JSON at info (or the level in MMH_LOG_LEVEL).
func Init(env string) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     parseLevel(os.Getenv("MMH_LOG_LEVEL"), slog.LevelInfo),
		AddSource: true,
	}

	if env == "development" {
		opts.Level = parseLevel(os.Getenv("MMH_LOG_LEVEL"), slog.LevelDebug)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log = slog.New(handler).With("app", "mediamatrixhub")
	slog.SetDefault(log)
}

func parseLevel(s string, def slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return def
	}
}

// SetLogger replaces the global logger.
func SetLogger(l *slog.Logger) {
	log = l
	slog.SetDefault(l)
}

// GetLogger returns the global logger, initialising a development one on
// first use.
func GetLogger() *slog.Logger {
	if log == nil {
		Init("development")
	}
	return log
}

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal logs at error level and exits with status 1.
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

// DBLog records a database operation; failures at error level.
func DBLog(operation, query string, duration time.Duration, err error) {
	fields := []any{
		"operation", operation,
		"query", query,
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Error("database operation failed", fields...)
	} else {
		GetLogger().Debug("database operation", fields...)
	}
}

// WorkerLog records the outcome of a background job step.
func WorkerLog(worker, operation string, err error, args ...any) {
	fields := append([]any{
		"worker", worker,
		"operation", operation,
	}, args...)

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Error("worker operation failed", fields...)
	} else {
		GetLogger().Info("worker operation completed", fields...)
	}
}

// MailLog records an outbound email attempt.
func MailLog(template, recipient string, err error) {
	if err != nil {
		GetLogger().Error("email not sent", "template", template, "recipient", recipient, "error", err.Error())
		return
	}
	GetLogger().Info("email sent", "template", template, "recipient", recipient)
}
