package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/keshon/trollbot/internal/config"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	log, closer, err := New(config.Log{Level: "debug", File: path, MaxSizeMB: 1, JSON: true})
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log.Info().Str("command", "leaderboard").Msg("Command finished")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"command":"leaderboard"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(config.Log{Level: "loud"})
	require.Error(t, err)
}

func TestEmptyLevelIsInfo(t *testing.T) {
	log, _, err := New(config.Log{})
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
