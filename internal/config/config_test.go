package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goaltool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GCP_PROJECT", "")
	t.Setenv("SPORTS_API_KEY", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.SportsAPI.Bookmaker)
	assert.Equal(t, MaxBatchSize, cfg.Leaderboard.BatchSize)
	assert.Equal(t, 100, cfg.Leaderboard.Top)
	assert.Equal(t, 60*24*time.Hour, cfg.CacheTTL())
	assert.Equal(t, 20*time.Second, cfg.SportsAPITimeout())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
project: from-file
sports_api:
  key: file-key
  timeout: 5s
leaderboard:
  batch_size: 100
logging:
  level: debug
  development: true
`)
	t.Setenv("GCP_PROJECT", "")
	t.Setenv("SPORTS_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Project)
	assert.Equal(t, "env-key", cfg.SportsAPI.Key)
	assert.Equal(t, 5*time.Second, cfg.SportsAPITimeout())
	assert.Equal(t, 100, cfg.Leaderboard.BatchSize)
	assert.Equal(t, 100, cfg.Leaderboard.Top, "unset keys keep their defaults")
	assert.True(t, cfg.Logging.Development)

	t.Setenv("GCP_PROJECT", "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Project)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"batch too large", "leaderboard:\n  batch_size: 501\n"},
		{"batch zero", "leaderboard:\n  batch_size: 0\n"},
		{"bad timeout", "sports_api:\n  timeout: soon\n"},
		{"bad ttl", "cache:\n  ttl: -1h\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"not yaml", "project: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Project = "demo"
	path := filepath.Join(t.TempDir(), "nested", "goaltool.yaml")
	require.NoError(t, cfg.Save(path))

	t.Setenv("GCP_PROJECT", "")
	t.Setenv("SPORTS_API_KEY", "")
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
