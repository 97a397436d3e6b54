package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the logging interface passed through ffaudio. It wraps
// slog.Logger so callers can swap handlers in tests.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithGroup(name string) Logger
}

// SlogLogger is a Logger backed by slog.
type SlogLogger struct {
	logger *slog.Logger
}

func New(handler slog.Handler) Logger {
	return &SlogLogger{logger: slog.New(handler)}
}

// Default logs info and above to stderr as text.
func Default() Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// JSON creates a Logger with a JSON handler, used by the HTTP server.
func JSON(w io.Writer, level slog.Level) Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Pretty creates a Logger with colored output for interactive use.
func Pretty(w io.Writer, level slog.Level) Logger {
	return New(NewPrettyHandler(w, &slog.HandlerOptions{Level: level}))
}

// Line creates a Logger in the log file format.
func Line(w io.Writer, level slog.Level) Logger {
	return New(NewLineHandler(w, &slog.HandlerOptions{Level: level}))
}

// Options selects the terminal format and an optional log file.
type Options struct {
	Level  slog.Level
	Format string // "pretty", "json" or "text"
	File   string // appended to when set
}

// Open builds a Logger writing to w in the requested format and, when
// opts.File is set, to that file as well. The returned closer releases the
// file and is never nil.
func Open(w io.Writer, opts Options) (Logger, io.Closer, error) {
	hopts := &slog.HandlerOptions{Level: opts.Level}

	var term slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "pretty":
		term = NewPrettyHandler(w, hopts)
	case "json":
		term = slog.NewJSONHandler(w, hopts)
	case "text":
		term = slog.NewTextHandler(w, hopts)
	default:
		return nil, nopCloser{}, fmt.Errorf("unknown log format %q", opts.Format)
	}

	if opts.File == "" {
		return New(term), nopCloser{}, nil
	}
	if dir := filepath.Dir(opts.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nopCloser{}, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("open log file: %w", err)
	}
	// The file keeps debug detail regardless of terminal verbosity.
	file := NewLineHandler(f, &slog.HandlerOptions{Level: min(opts.Level, slog.LevelDebug)})
	return New(NewFanoutHandler(term, file)), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// FromContext returns the Logger stored in ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return logger
	}
	return Default()
}

func WithContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

type loggerKey struct{}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

func (l *SlogLogger) WithGroup(name string) Logger {
	return &SlogLogger{logger: l.logger.WithGroup(name)}
}

// ParseLevel converts a level name to slog.Level, ignoring case. Unknown
// names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
