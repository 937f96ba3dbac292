// Package logging builds the engine's single zerolog.Logger. Grounded on
// Sergey-Bar-Alfred's services/gateway/logger/logger.go: a console writer
// over stderr, global level set once from config, timestamps on every
// record.
package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/config"
)

// New returns a configured zerolog.Logger for the given level name
// (debug, info, warn, error; unrecognized values fall back to info).
func New(cfg *config.Config) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(out).With().Timestamp().Str("component", "medicaid-fraud-detector").Logger()
}
