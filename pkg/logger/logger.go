// Package logger builds the zerolog.Logger every other package takes as
// a constructor parameter, so relayd has one place that decides output
// format and verbosity.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the logger's verbosity and output format.
type Config struct {
	Level  string // debug, info, warn, error; anything else falls back to info
	Pretty bool   // human-readable console writer instead of JSON lines
}

// New builds a zerolog.Logger from cfg and sets the process-wide minimum
// level, since zerolog filters at the global level before a per-event
// check.
func New(cfg Config) zerolog.Logger {
	var level zerolog.Level
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).With().Timestamp().Caller().Logger()
}

// SetGlobalLogger points zerolog/log's package-level logger at l, so
// third-party code that logs through the global logger (rather than
// taking one as a parameter) ends up with the same format and level.
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
