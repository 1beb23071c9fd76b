package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. An unknown level falls back to info,
// and any format other than "json" gets the human-readable console writer.
func New(level, format string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stdout
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	return zerolog.New(out).Level(logLevel).With().Timestamp().Logger()
}

// Nop returns a logger that discards every event. Used in tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
