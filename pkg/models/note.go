package models

import "time"

// Note represents a single note in memory. Content holds the rendered
// rich text exactly as the editor produced it.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	FolderID  *string   `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Folder represents a node in the folder tree. ParentID nil means the
// folder sits at the root.
type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ParentID   *string   `json:"parentId"`
	IsExpanded bool      `json:"isExpanded"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SyncStatus is the process-local view of cloud synchronization. It is
// never persisted; a fresh session starts from the zero value.
type SyncStatus struct {
	Syncing        bool       `json:"syncing"`
	LastSyncTime   *time.Time `json:"lastSyncTime"`
	SyncErrors     []string   `json:"syncErrors"`
	PendingChanges int        `json:"pendingChanges"`
}
