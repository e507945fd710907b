// Package obs builds the service logger.
package obs

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/warp/deal-engine/config"
)

// ServiceName tags every log line.
const ServiceName = "deal-engine"

// NewLogger creates a zerolog logger writing to stdout. Format "json" writes
// one JSON object per line; anything else uses the console writer. Unknown
// levels fall back to info.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := out
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Str("service", ServiceName).Logger()
}
