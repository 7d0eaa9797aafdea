package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.True(t, cfg.AutoSave)
	assert.Equal(t, 2000, cfg.AutoSaveInterval)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 30000, cfg.Sync.IntervalMS)
	assert.False(t, cfg.Sync.AutoSync)
	assert.NotEmpty(t, cfg.DataPath)
	assert.NotZero(t, cfg.OAuth.RedirectPort)
}

func TestDefaults_CloudNotConfigured(t *testing.T) {
	// Without a client id the app runs fully offline.
	require.False(t, Defaults().CloudConfigured())

	cfg := Defaults()
	cfg.OAuth.ClientID = "client"
	require.True(t, cfg.CloudConfigured())
}

func TestDefaultShortcuts_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range DefaultShortcuts() {
		require.False(t, seen[s.ID], "duplicate shortcut id %s", s.ID)
		seen[s.ID] = true
		assert.NotEmpty(t, s.Keys)
		assert.Contains(t, []string{"general", "editor", "formatting"}, s.Category)
	}
}
