// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a logger writing to w. format is "console" (default) or "json".
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	out := w
	switch strings.ToLower(format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", format)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Setup replaces the global logger used through zerolog/log
func Setup(level, format string, w io.Writer) error {
	logger, err := New(level, format, w)
	if err != nil {
		return err
	}
	log.Logger = logger
	return nil
}
