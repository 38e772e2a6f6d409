// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is the subset of configuration the logger needs.
type Config interface {
	GetEnv() string
	GetLogLevel() string
	GetAppName() string
}

// Setup sets the global level and output. DEV environments get human readable console output.
func Setup(cfg Config) {
	Init(os.Stderr, cfg)
}

// Init is Setup with an explicit writer.
func Init(w io.Writer, cfg Config) {
	zerolog.SetGlobalLevel(ParseLevel(cfg.GetLogLevel()))
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if strings.EqualFold(cfg.GetEnv(), "DEV") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", cfg.GetAppName()).Logger()
}

// ParseLevel maps a level name to a zerolog level, falling back to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
