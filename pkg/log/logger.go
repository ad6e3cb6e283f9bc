package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}

// Supported handler formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(level slog.Level, out io.Writer) *SlogLogger {
	return &SlogLogger{
		logger: slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
			Level: level,
		})),
	}
}

// NewLogger builds a logger writing either text or JSON records to out.
func NewLogger(level slog.Level, format string, out io.Writer) (*SlogLogger, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "", FormatText:
		return &SlogLogger{logger: slog.New(slog.NewTextHandler(out, opts))}, nil
	case FormatJSON:
		return &SlogLogger{logger: slog.New(slog.NewJSONHandler(out, opts))}, nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}

func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", levelStr)
	}
}

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

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
