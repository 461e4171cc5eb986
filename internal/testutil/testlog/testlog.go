package testlog

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/wbxml/internal/logging"
)

// Start configures the test log profile and returns a logger that writes
// through t, so output only shows for failing or verbose tests.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logging.ConfigureTests()

	cfg := logging.DefaultConfig(logging.ProfileTest)
	logging.ApplyEnv(&cfg)
	cfg.Out = zerolog.NewTestWriter(t)
	logger := logging.New(cfg).With().Str("test", t.Name()).Logger()
	logger.Debug().Msg("start")
	return logger
}
