// Package logger builds the zerolog logger used by the server.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// EnvLogLevel names the environment variable holding the log level.
const EnvLogLevel = "CORNER_MCP_LOG_LEVEL"

// ParseLevel maps "debug", "info", "warn" and "error" to zerolog levels.
// Anything else, including the empty string, is info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a JSON logger writing to writer at the given level, with a
// timestamp on every event.
func New(writer io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewFromEnv returns a stderr logger at the level named by
// CORNER_MCP_LOG_LEVEL. Stdout is reserved for the protocol stream.
func NewFromEnv() zerolog.Logger {
	return New(os.Stderr, ParseLevel(os.Getenv(EnvLogLevel)))
}

// Component returns a child logger tagged with component.
func Component(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
