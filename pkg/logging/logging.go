package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLoggerWithFormat creates a slog.Logger writing text or JSON records to output.
func NewLoggerWithFormat(levelString string, format string, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stdout
	}
	options := &slog.HandlerOptions{
		Level: ParseLevel(levelString),
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, options)
	default:
		handler = slog.NewTextHandler(output, options)
	}
	return slog.New(handler)
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR to slog levels, defaulting to INFO.
func ParseLevel(levelString string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(levelString)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
