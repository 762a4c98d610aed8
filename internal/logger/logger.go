package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds a slog logger writing to output (stderr when nil). Level and
// format strings come straight from the configuration; anything
// unrecognized falls back to info-level text output.
func New(level, format string, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	lvl := new(slog.Level)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		*lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
