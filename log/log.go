package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a console logger tagged with the given component name.
// The level defaults to info; use [NewLoggerWithLevel] to override.
func NewLogger(component string) zerolog.Logger {
	return NewLoggerWithLevel(component, zerolog.InfoLevel)
}

// NewLoggerWithLevel returns a console logger tagged with the given
// component name, emitting records at or above the given level.
func NewLoggerWithLevel(component string, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
