package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/pkg/config"
	"quill/pkg/models"
)

func TestConvertToWailsNote(t *testing.T) {
	folderID := "f1"
	created := time.Date(2025, 3, 10, 9, 0, 0, 123456789, time.UTC)
	note := models.Note{
		ID:        "n1",
		Title:     "title",
		FolderID:  &folderID,
		CreatedAt: created,
		UpdatedAt: created,
	}

	converted := ConvertToWailsNote(note)
	assert.Equal(t, "f1", converted.FolderID)
	assert.Equal(t, created.Format(time.RFC3339Nano), converted.CreatedAt)

	note.FolderID = nil
	assert.Empty(t, ConvertToWailsNote(note).FolderID)
}

func TestStringToPtr(t *testing.T) {
	require.Nil(t, StringToPtr(""))

	p := StringToPtr("f1")
	require.NotNil(t, p)
	assert.Equal(t, "f1", *p)
}

func TestWailsSettings_NeverCarriesClientSecret(t *testing.T) {
	cfg := config.Defaults()
	cfg.OAuth.ClientID = "client"
	cfg.OAuth.ClientSecret = "super-secret"

	settings := ConvertToWailsSettings(cfg)

	payload, err := json.Marshal(settings)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "super-secret")
	assert.NotContains(t, string(payload), "clientSecret")
}

func TestWailsSettings_ApplyToPreservesBackendFields(t *testing.T) {
	cfg := config.Defaults()
	cfg.OAuth.ClientID = "client"
	cfg.OAuth.ClientSecret = "super-secret"
	originalDataPath := cfg.DataPath

	edited := ConvertToWailsSettings(cfg)
	edited.Theme = "dark"
	edited.AutoSaveInterval = 500
	edited.DataPath = "/somewhere/else" // ignored: not editable
	edited.ApplyTo(cfg)

	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, 500, cfg.AutoSaveInterval)
	assert.Equal(t, originalDataPath, cfg.DataPath)
	assert.Equal(t, "super-secret", cfg.OAuth.ClientSecret)
}

func TestConvertToWailsSyncStatus(t *testing.T) {
	converted := ConvertToWailsSyncStatus(models.SyncStatus{})
	// The frontend always receives an array, never null.
	require.NotNil(t, converted.SyncErrors)
	assert.Empty(t, converted.LastSyncTime)

	now := time.Now()
	converted = ConvertToWailsSyncStatus(models.SyncStatus{
		LastSyncTime: &now,
		SyncErrors:   []string{"boom"},
	})
	assert.Equal(t, now.Format(time.RFC3339Nano), converted.LastSyncTime)
	assert.Equal(t, []string{"boom"}, converted.SyncErrors)
}
