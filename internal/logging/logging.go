// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// CorpusIDKey is the context key for corpus instance IDs.
	CorpusIDKey ContextKey = "corpus_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Initialize with a default logger (JSON format, Info level)
	InitLogger(LevelInfo, FormatJSON)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// InitLogger initializes the global logger with the specified level and format.
func InitLogger(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// WithCorpusID adds a corpus instance ID to the context.
func WithCorpusID(ctx context.Context, corpusID string) context.Context {
	return context.WithValue(ctx, CorpusIDKey, corpusID)
}

// GetCorpusID retrieves the corpus instance ID from the context.
func GetCorpusID(ctx context.Context) string {
	if corpusID, ok := ctx.Value(CorpusIDKey).(string); ok {
		return corpusID
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if corpusID := GetCorpusID(ctx); corpusID != "" {
		logger = logger.With("corpus_id", corpusID)
	}
	return logger
}

// Helper functions for common logging patterns

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// CorpusOpened logs a corpus being opened by a storage backend.
func CorpusOpened(format, name, language string, books int, args ...any) {
	allArgs := []any{
		"format", format,
		"name", name,
		"language", language,
		"books", books,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("corpus_opened", allArgs...)
}

// FormatRejected logs a backend declining a source as not its format.
func FormatRejected(format, path, reason string, args ...any) {
	allArgs := []any{
		"format", format,
		"path", path,
		"reason", reason,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Debug("format_rejected", allArgs...)
}

// BookLoaded logs a lazy book population.
func BookLoaded(book string, bookIndex, chapters int, duration time.Duration, args ...any) {
	allArgs := []any{
		"book", book,
		"book_index", bookIndex,
		"chapters", chapters,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("book_loaded", allArgs...)
}

// ReferenceQuery logs a resolved reference query and its result size.
func ReferenceQuery(text string, verses int, args ...any) {
	allArgs := []any{
		"reference", text,
		"verses", verses,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Debug("reference_query", allArgs...)
}
