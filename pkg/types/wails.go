package types

import (
	"time"

	"quill/pkg/config"
	"quill/pkg/models"
	"quill/pkg/search"
)

// WailsNote is a note shaped for the Wails bindings: dates travel as
// RFC 3339 strings and the nullable folder id as a plain string.
type WailsNote struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	FolderID  string `json:"folderId"` // empty means root
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// WailsFolder is a folder shaped for the Wails bindings.
type WailsFolder struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ParentID   string `json:"parentId"` // empty means root
	IsExpanded bool   `json:"isExpanded"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// WailsSyncStatus mirrors models.SyncStatus for the frontend.
type WailsSyncStatus struct {
	Syncing        bool     `json:"syncing"`
	LastSyncTime   string   `json:"lastSyncTime"` // empty when never synced
	SyncErrors     []string `json:"syncErrors"`
	PendingChanges int      `json:"pendingChanges"`
}

// WailsSettings is the user-editable slice of the configuration. OAuth
// client credentials stay on the backend and never cross to the frontend.
type WailsSettings struct {
	DataPath         string             `json:"dataPath"` // read-only for display
	AutoSave         bool               `json:"autoSave"`
	AutoSaveInterval int                `json:"autoSaveInterval"`
	Theme            string             `json:"theme"`
	FontSize         int                `json:"fontSize"`
	FontFamily       string             `json:"fontFamily"`
	LineHeight       float64            `json:"lineHeight"`
	WordWrap         bool               `json:"wordWrap"`
	ShowLineNumbers  bool               `json:"showLineNumbers"`
	TabSize          int                `json:"tabSize"`
	Shortcuts        []config.Shortcut  `json:"shortcuts"`
	Sync             config.SyncOptions `json:"sync"`
}

// ConvertToWailsSettings projects the frontend-facing settings out of the
// configuration.
func ConvertToWailsSettings(cfg *config.Config) WailsSettings {
	return WailsSettings{
		DataPath:         cfg.DataPath,
		AutoSave:         cfg.AutoSave,
		AutoSaveInterval: cfg.AutoSaveInterval,
		Theme:            cfg.Theme,
		FontSize:         cfg.FontSize,
		FontFamily:       cfg.FontFamily,
		LineHeight:       cfg.LineHeight,
		WordWrap:         cfg.WordWrap,
		ShowLineNumbers:  cfg.ShowLineNumbers,
		TabSize:          cfg.TabSize,
		Shortcuts:        cfg.Shortcuts,
		Sync:             cfg.Sync,
	}
}

// ApplyTo writes the editable settings back onto the configuration. The data
// path and OAuth client configuration are not editable from the frontend and
// are left untouched.
func (s WailsSettings) ApplyTo(cfg *config.Config) {
	cfg.AutoSave = s.AutoSave
	cfg.AutoSaveInterval = s.AutoSaveInterval
	cfg.Theme = s.Theme
	cfg.FontSize = s.FontSize
	cfg.FontFamily = s.FontFamily
	cfg.LineHeight = s.LineHeight
	cfg.WordWrap = s.WordWrap
	cfg.ShowLineNumbers = s.ShowLineNumbers
	cfg.TabSize = s.TabSize
	cfg.Shortcuts = s.Shortcuts
	cfg.Sync = s.Sync
}

// SearchState is the bound result of an in-note search operation: the match
// bookkeeping plus the document runs the renderer projects.
type SearchState struct {
	Query        string       `json:"query"`
	TotalMatches int          `json:"totalMatches"`
	CurrentMatch int          `json:"currentMatch"` // -1 when no matches
	Runs         []search.Run `json:"runs"`
}

func ptrToString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// StringToPtr converts the bindings' empty-string-means-root convention back
// to a nullable id.
func StringToPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ConvertToWailsNote converts a models.Note with proper time formatting.
func ConvertToWailsNote(note models.Note) WailsNote {
	return WailsNote{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Category:  note.Category,
		FolderID:  ptrToString(note.FolderID),
		CreatedAt: note.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: note.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ConvertToWailsNotes converts a slice of notes.
func ConvertToWailsNotes(notes []models.Note) []WailsNote {
	wailsNotes := make([]WailsNote, len(notes))
	for i, note := range notes {
		wailsNotes[i] = ConvertToWailsNote(note)
	}
	return wailsNotes
}

// ConvertToWailsFolder converts a models.Folder.
func ConvertToWailsFolder(folder models.Folder) WailsFolder {
	return WailsFolder{
		ID:         folder.ID,
		Name:       folder.Name,
		ParentID:   ptrToString(folder.ParentID),
		IsExpanded: folder.IsExpanded,
		CreatedAt:  folder.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  folder.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ConvertToWailsFolders converts a slice of folders.
func ConvertToWailsFolders(folders []models.Folder) []WailsFolder {
	wailsFolders := make([]WailsFolder, len(folders))
	for i, folder := range folders {
		wailsFolders[i] = ConvertToWailsFolder(folder)
	}
	return wailsFolders
}

// ConvertToWailsSyncStatus converts a models.SyncStatus.
func ConvertToWailsSyncStatus(status models.SyncStatus) WailsSyncStatus {
	converted := WailsSyncStatus{
		Syncing:        status.Syncing,
		SyncErrors:     status.SyncErrors,
		PendingChanges: status.PendingChanges,
	}
	if converted.SyncErrors == nil {
		converted.SyncErrors = []string{}
	}
	if status.LastSyncTime != nil {
		converted.LastSyncTime = status.LastSyncTime.Format(time.RFC3339Nano)
	}
	return converted
}
