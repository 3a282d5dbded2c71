// Package logs builds the structured process logger.
package logs

import (
	"io"
	"os"

	"github.com/ivms-online/ivms-licenses-service/internal/config"
	"github.com/rs/zerolog"
)

// Options controls how the process logger is built.
type Options struct {
	Environment config.Environment
	Level       string
	Version     string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// New creates the process logger.
// Outside production the output is human readable; in production it is one JSON object per line.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	logger := zerolog.New(out).With().Timestamp().Str("version", opts.Version).Logger()
	if opts.Environment != config.EnvProduction {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, NoColor: opts.Output != nil})
	}

	return logger.Level(ParseLevel(opts.Level))
}

// ParseLevel converts a level name into a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
