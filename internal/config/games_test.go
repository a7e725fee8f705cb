package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflex_drills/internal/game"
)

func TestLoadGamesBuiltIn(t *testing.T) {
	games, err := LoadGames("")
	require.NoError(t, err)
	require.NoError(t, games.Validate(12))

	for _, kind := range game.Kinds {
		assert.Equal(t, game.DefaultConfig(kind), games[kind], string(kind))
	}
}

func TestLoadGamesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
arrow:
  total_trials: 5
  jitter_max: 900ms
striker:
  total_trials: 6
`), 0o600))

	games, err := LoadGames(path)
	require.NoError(t, err)

	arrow := games[game.KindArrow]
	assert.Equal(t, 5, arrow.TotalTrials)
	assert.Equal(t, 900*time.Millisecond, arrow.JitterMax)
	assert.Equal(t, 800*time.Millisecond, arrow.JitterMin)
	assert.Equal(t, "Pro reflexes", arrow.Tiers.Tiers[0].Label)

	assert.Equal(t, 6, games[game.KindStriker].TotalTrials)
	assert.Equal(t, game.DefaultConfig(game.KindScan), games[game.KindScan])
}

func TestLoadGamesErrors(t *testing.T) {
	_, err := LoadGames(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arrow: [1, 2"), 0o600))
	_, err = LoadGames(path)
	assert.Error(t, err)

	games, err := LoadGames("")
	require.NoError(t, err)
	delete(games, game.KindScan)
	assert.ErrorIs(t, games.Validate(12), game.ErrInvalidConfig)
}
