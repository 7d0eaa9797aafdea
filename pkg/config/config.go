package config

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
)

// Config holds application configuration. It is loaded once at startup and
// saved on every mutating call; nothing else touches the config file.
type Config struct {
	DataPath string `json:"dataPath"`

	// Editor settings
	AutoSave         bool    `json:"autoSave"`
	AutoSaveInterval int     `json:"autoSaveInterval"` // milliseconds
	Theme            string  `json:"theme"`            // "light" or "dark"
	FontSize         int     `json:"fontSize"`
	FontFamily       string  `json:"fontFamily"`
	LineHeight       float64 `json:"lineHeight"`
	WordWrap         bool    `json:"wordWrap"`
	ShowLineNumbers  bool    `json:"showLineNumbers"`
	TabSize          int     `json:"tabSize"`

	// Keyboard shortcuts, editable from the settings screen
	Shortcuts []Shortcut `json:"shortcuts"`

	// Cloud sync
	Sync SyncOptions `json:"sync"`

	// OAuth client configuration. Empty ClientID means cloud features are
	// not configured and the app runs fully offline.
	OAuth OAuthOptions `json:"oauth"`
}

// Shortcut is a single configurable keyboard shortcut.
type Shortcut struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Keys        string `json:"keys"`
	Category    string `json:"category"` // "general", "editor" or "formatting"
}

// SyncOptions controls the cloud sync adapter.
type SyncOptions struct {
	Enabled     bool   `json:"enabled"`
	AutoSync    bool   `json:"autoSync"`
	IntervalMS  int    `json:"intervalMs"`
	EndpointURL string `json:"endpointUrl"`
}

// OAuthOptions holds the identity provider client configuration.
type OAuthOptions struct {
	ClientID         string `json:"clientId"`
	ClientSecret     string `json:"clientSecret"`
	AuthorizationURL string `json:"authorizationUrl"`
	TokenURL         string `json:"tokenUrl"`
	UserInfoURL      string `json:"userInfoUrl"`
	RedirectPort     int    `json:"redirectPort"`
}

// DefaultShortcuts returns the factory shortcut table.
func DefaultShortcuts() []Shortcut {
	return []Shortcut{
		{ID: "save", Name: "Save Note", Description: "Save the current note", Keys: "Cmd+S", Category: "general"},
		{ID: "search", Name: "Search", Description: "Open search dialog", Keys: "Cmd+F", Category: "general"},
		{ID: "toggleSidebar", Name: "Toggle Sidebar", Description: "Show or hide the sidebar", Keys: "Cmd+Shift+B", Category: "general"},
		{ID: "newNote", Name: "New Note", Description: "Create a new note", Keys: "Cmd+N", Category: "general"},
		{ID: "closeSearch", Name: "Close Search", Description: "Close search dialog", Keys: "Escape", Category: "general"},
		{ID: "increaseFontSize", Name: "Increase Font Size", Description: "Make text larger", Keys: "Cmd++", Category: "editor"},
		{ID: "decreaseFontSize", Name: "Decrease Font Size", Description: "Make text smaller", Keys: "Cmd+-", Category: "editor"},
		{ID: "indent", Name: "Indent", Description: "Indent current line", Keys: "Tab", Category: "editor"},
		{ID: "unindent", Name: "Unindent", Description: "Remove indentation", Keys: "Shift+Tab", Category: "editor"},
		{ID: "bold", Name: "Bold", Description: "Bold selected text", Keys: "Cmd+B", Category: "formatting"},
		{ID: "italic", Name: "Italic", Description: "Italicize selected text", Keys: "Cmd+I", Category: "formatting"},
		{ID: "underline", Name: "Underline", Description: "Underline selected text", Keys: "Cmd+U", Category: "formatting"},
	}
}

// Defaults returns a config populated with factory settings.
func Defaults() *Config {
	return &Config{
		DataPath:         GetDefaultDataPath(),
		AutoSave:         true,
		AutoSaveInterval: 2000,
		Theme:            "light",
		FontSize:         14,
		FontFamily:       "system-ui",
		LineHeight:       1.6,
		WordWrap:         true,
		ShowLineNumbers:  false,
		TabSize:          4,
		Shortcuts:        DefaultShortcuts(),
		Sync: SyncOptions{
			Enabled:    false,
			AutoSync:   false,
			IntervalMS: 30000,
		},
		OAuth: OAuthOptions{
			AuthorizationURL: "https://accounts.google.com/o/oauth2/auth",
			TokenURL:         "https://oauth2.googleapis.com/token",
			UserInfoURL:      "https://www.googleapis.com/oauth2/v2/userinfo",
			RedirectPort:     53682,
		},
	}
}

// GetDefaultDataPath returns the default path for storing note data
func GetDefaultDataPath() string {
	currentUser, err := user.Current()
	if err != nil {
		return "./data"
	}

	defaultPath := filepath.Join(currentUser.HomeDir, "Documents", "Quill", "Notes")

	if err := os.MkdirAll(defaultPath, 0755); err != nil {
		// Fall back to relative path if we can't create in Documents
		return "./data"
	}

	return defaultPath
}

// GetConfigFilePath returns the path where the config file should be stored
func GetConfigFilePath() string {
	currentUser, err := user.Current()
	if err != nil {
		return "./config.json"
	}

	configPath := filepath.Join(currentUser.HomeDir, ".config", "quill")

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return "./config.json"
	}

	return filepath.Join(configPath, "config.json")
}

// Load loads configuration from file, using defaults if file doesn't exist
func Load() (*Config, error) {
	config := Defaults()

	configFile := GetConfigFilePath()
	if data, err := os.ReadFile(configFile); err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	if len(config.Shortcuts) == 0 {
		config.Shortcuts = DefaultShortcuts()
	}

	// Ensure the data directory exists
	if err := os.MkdirAll(config.DataPath, 0755); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves the configuration to file
func (c *Config) Save() error {
	configFile := GetConfigFilePath()

	configDir := filepath.Dir(configFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configFile, data, 0644)
}

// UpdateShortcut replaces the key binding for a shortcut by id and persists.
func (c *Config) UpdateShortcut(id, keys string) error {
	for i := range c.Shortcuts {
		if c.Shortcuts[i].ID == id {
			c.Shortcuts[i].Keys = keys
			return c.Save()
		}
	}
	return nil
}

// ResetShortcuts restores the factory shortcut table and persists.
func (c *Config) ResetShortcuts() error {
	c.Shortcuts = DefaultShortcuts()
	return c.Save()
}

// CloudConfigured reports whether an OAuth client is configured. Checked
// once at startup; cloud operations short-circuit when false.
func (c *Config) CloudConfigured() bool {
	return c.OAuth.ClientID != ""
}
