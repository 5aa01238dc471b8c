// Package logging builds the zerolog logger shared by the GUI and CLI and
// adapts it to the plain message callbacks used by the other packages.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewConsole returns a human readable logger on stderr.
func NewConsole(level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, level)
}

// ParseLevel maps a flag value such as "debug" or "WARN" to a level.
// Unknown or empty values fall back to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Func adapts logger to a func(string) callback logging at info level with
// the given component name.
func Func(logger zerolog.Logger, component string) func(string) {
	l := logger.With().Str("component", component).Logger()
	return func(message string) {
		l.Info().Msg(message)
	}
}
