package logging_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-oauth2-core/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	env, level string
}

func (c testConfig) GetEnv() string      { return c.env }
func (c testConfig) GetLogLevel() string { return c.level }
func (c testConfig) GetAppName() string  { return "oauth2-test" }

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, logging.ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, logging.ParseLevel(" warn "))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel("chatty"))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel(""))
}

func TestInit(t *testing.T) {
	previous := log.Logger
	previousLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(previousLevel)
	})

	var buf bytes.Buffer
	logging.Init(&buf, testConfig{env: "PROD", level: "warn"})

	log.Info().Msg("hidden")
	log.Warn().Str("client_id", "c1").Msg("visible")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"client_id":"c1"`)
	require.Contains(t, out, `"app":"oauth2-test"`)
}
