package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the service logger writing to w. An unknown level falls
// back to info.
func NewLogger(cfg LoggingConfig, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
