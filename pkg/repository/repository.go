// Package repository owns the in-memory note and folder collections and
// mirrors every mutation to the local store as whole-collection JSON writes.
package repository

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"quill/pkg/errors"
	"quill/pkg/models"
	"quill/pkg/storage"
)

// Repository is the authoritative holder of both collections. All reads hit
// memory; every mutation rewrites the affected collection in the store.
type Repository struct {
	mutex   sync.RWMutex
	store   *storage.LocalStore
	notes   []models.Note
	folders []models.Folder

	selectedNoteID   string
	selectedFolderID *string
}

// New creates a repository over the given store. Call Load before use.
func New(store *storage.LocalStore) *Repository {
	return &Repository{store: store}
}

// newID allocates a process-time-based id: millisecond timestamp plus a
// random suffix. Not cryptographically unique; collisions under rapid
// creation are theoretically possible and accepted.
func newID() string {
	return fmt.Sprintf("%d-%04d", time.Now().UnixMilli(), rand.IntN(10000))
}

// Load rehydrates both collections from the store. Malformed JSON is logged
// and leaves the corresponding collection empty; there is no partial
// recovery.
func (r *Repository) Load() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.notes = nil
	r.folders = nil

	if data, err := r.store.Get(storage.NotesKey); err != nil {
		errors.Wrap(err, errors.ErrTypeStorage, "STORE_READ_FAILED", "failed to read notes").Log()
	} else if len(data) > 0 {
		var notes []models.Note
		if err := json.Unmarshal(data, &notes); err != nil {
			errors.ErrStoreCorrupted.WithContext("key", storage.NotesKey).Log()
		} else {
			r.notes = notes
		}
	}

	if data, err := r.store.Get(storage.FoldersKey); err != nil {
		errors.Wrap(err, errors.ErrTypeStorage, "STORE_READ_FAILED", "failed to read folders").Log()
	} else if len(data) > 0 {
		var folders []models.Folder
		if err := json.Unmarshal(data, &folders); err != nil {
			errors.ErrStoreCorrupted.WithContext("key", storage.FoldersKey).Log()
		} else {
			r.folders = folders
		}
	}

	log.Printf("Repository loaded: %d notes, %d folders", len(r.notes), len(r.folders))
}

// persistNotes writes the whole notes collection. Must be called with the
// mutex held.
func (r *Repository) persistNotes() {
	data, err := json.Marshal(r.notes)
	if err != nil {
		errors.Wrap(err, errors.ErrTypeStorage, "STORE_ENCODE_FAILED", "failed to encode notes").Log()
		return
	}
	if err := r.store.Set(storage.NotesKey, data); err != nil {
		errors.Wrap(err, errors.ErrTypeStorage, "STORE_WRITE_FAILED", "failed to write notes").Log()
	}
}

func (r *Repository) persistFolders() {
	data, err := json.Marshal(r.folders)
	if err != nil {
		errors.Wrap(err, errors.ErrTypeStorage, "STORE_ENCODE_FAILED", "failed to encode folders").Log()
		return
	}
	if err := r.store.Set(storage.FoldersKey, data); err != nil {
		errors.Wrap(err, errors.ErrTypeStorage, "STORE_WRITE_FAILED", "failed to write folders").Log()
	}
}

// Notes returns a snapshot of the notes collection in insertion order.
func (r *Repository) Notes() []models.Note {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	notes := make([]models.Note, len(r.notes))
	copy(notes, r.notes)
	return notes
}

// Folders returns a snapshot of the folders collection.
func (r *Repository) Folders() []models.Folder {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	folders := make([]models.Folder, len(r.folders))
	copy(folders, r.folders)
	return folders
}

// GetNote returns a note by id.
func (r *Repository) GetNote(id string) (models.Note, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, note := range r.notes {
		if note.ID == id {
			return note, nil
		}
	}
	return models.Note{}, errors.ErrNoteNotFound.WithContext("noteId", id)
}

// CreateNote allocates a new empty note at the head of the collection. A nil
// folderID falls back to the currently selected folder.
func (r *Repository) CreateNote(folderID *string) models.Note {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if folderID == nil {
		folderID = r.selectedFolderID
	}

	now := time.Now()
	note := models.Note{
		ID:        newID(),
		FolderID:  folderID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.notes = append([]models.Note{note}, r.notes...)
	r.selectedNoteID = note.ID
	r.persistNotes()
	return note
}

// UpdateNote replaces the entity matching the note's id. An unknown id is a
// silent no-op; the collection is persisted either way.
func (r *Repository) UpdateNote(note models.Note) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i := range r.notes {
		if r.notes[i].ID == note.ID {
			note.UpdatedAt = time.Now()
			r.notes[i] = note
			r.selectedNoteID = note.ID
			break
		}
	}
	r.persistNotes()
}

// DeleteNote removes a note. When the deleted note was selected, selection
// falls back to the first remaining note or none.
func (r *Repository) DeleteNote(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	kept := r.notes[:0]
	for _, note := range r.notes {
		if note.ID != id {
			kept = append(kept, note)
		}
	}
	r.notes = kept

	if r.selectedNoteID == id {
		if len(r.notes) > 0 {
			r.selectedNoteID = r.notes[0].ID
		} else {
			r.selectedNoteID = ""
		}
	}
	r.persistNotes()
}

// MoveNote reassigns a note's folder. Nil moves it to the root.
func (r *Repository) MoveNote(noteID string, folderID *string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i := range r.notes {
		if r.notes[i].ID == noteID {
			r.notes[i].FolderID = folderID
			r.notes[i].UpdatedAt = time.Now()
			break
		}
	}
	r.persistNotes()
}

// SelectedNote returns the currently selected note, if any.
func (r *Repository) SelectedNote() (models.Note, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, note := range r.notes {
		if note.ID == r.selectedNoteID {
			return note, true
		}
	}
	return models.Note{}, false
}

// SelectNote marks a note as selected.
func (r *Repository) SelectNote(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.selectedNoteID = id
}

// SelectFolder marks a folder as selected; nil selects the root.
func (r *Repository) SelectFolder(id *string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.selectedFolderID = id
}

// SelectedFolderID returns the currently selected folder id, nil for root.
func (r *Repository) SelectedFolderID() *string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.selectedFolderID
}

// CreateFolder appends a new expanded folder under parentID.
func (r *Repository) CreateFolder(name string, parentID *string) models.Folder {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	folder := models.Folder{
		ID:         newID(),
		Name:       name,
		ParentID:   parentID,
		IsExpanded: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	r.folders = append(r.folders, folder)
	r.persistFolders()
	return folder
}

// UpdateFolder replaces the entity matching the folder's id. Moving a folder
// under itself or one of its own descendants is rejected; an unknown id is a
// silent no-op.
func (r *Repository) UpdateFolder(folder models.Folder) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if folder.ParentID != nil {
		if *folder.ParentID == folder.ID || r.isDescendant(*folder.ParentID, folder.ID) {
			return errors.ErrFolderCycle.WithContext("folderId", folder.ID)
		}
	}

	for i := range r.folders {
		if r.folders[i].ID == folder.ID {
			folder.UpdatedAt = time.Now()
			r.folders[i] = folder
			break
		}
	}
	r.persistFolders()
	return nil
}

// ToggleFolder flips a folder's expansion state.
func (r *Repository) ToggleFolder(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i := range r.folders {
		if r.folders[i].ID == id {
			r.folders[i].IsExpanded = !r.folders[i].IsExpanded
			r.folders[i].UpdatedAt = time.Now()
			break
		}
	}
	r.persistFolders()
}

// childIndex builds the parentId -> child folder ids adjacency index for the
// current collection. Rebuilt per mutation batch so cascades stay linear on
// deep trees. Must be called with the mutex held.
func (r *Repository) childIndex() map[string][]string {
	index := make(map[string][]string, len(r.folders))
	for _, folder := range r.folders {
		if folder.ParentID != nil {
			index[*folder.ParentID] = append(index[*folder.ParentID], folder.ID)
		}
	}
	return index
}

// isDescendant reports whether candidate is id itself or sits anywhere below
// id in the folder tree. Must be called with the mutex held.
func (r *Repository) isDescendant(candidate, id string) bool {
	index := r.childIndex()
	stack := []string{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range index[current] {
			if child == candidate {
				return true
			}
			stack = append(stack, child)
		}
	}
	return false
}

// DeleteFolder removes the folder and, recursively, all of its descendant
// folders. Notes living anywhere in the deleted subtree are reparented to
// the root; deletion is never blocked by note ownership.
func (r *Repository) DeleteFolder(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	index := r.childIndex()

	// Collect the doomed subtree with an explicit stack to survive
	// arbitrary depth.
	doomed := map[string]bool{id: true}
	stack := []string{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range index[current] {
			doomed[child] = true
			stack = append(stack, child)
		}
	}

	for i := range r.notes {
		if r.notes[i].FolderID != nil && doomed[*r.notes[i].FolderID] {
			r.notes[i].FolderID = nil
		}
	}

	kept := r.folders[:0]
	for _, folder := range r.folders {
		if !doomed[folder.ID] {
			kept = append(kept, folder)
		}
	}
	r.folders = kept

	if r.selectedFolderID != nil && doomed[*r.selectedFolderID] {
		r.selectedFolderID = nil
	}

	r.persistNotes()
	r.persistFolders()
}

// Replace swaps in externally sourced collections (a cloud pull or an
// external file change) and mirrors them to the store.
func (r *Repository) Replace(notes []models.Note, folders []models.Folder) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.notes = notes
	r.folders = folders
	r.persistNotes()
	r.persistFolders()
}

// Import appends externally sourced notes and folders to the collections.
// Every entity gets a fresh id so imports never collide with existing data;
// folder references inside the batch are remapped to the fresh ids, and
// references that resolve to neither the batch nor an existing folder drop
// to the root. Returns the number of notes and folders imported.
func (r *Repository) Import(notes []models.Note, folders []models.Folder) (int, int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing := make(map[string]bool, len(r.folders))
	for _, folder := range r.folders {
		existing[folder.ID] = true
	}

	now := time.Now()

	remapped := make(map[string]string, len(folders))
	for i := range folders {
		fresh := newID()
		if folders[i].ID != "" {
			remapped[folders[i].ID] = fresh
		}
		folders[i].ID = fresh
		if folders[i].CreatedAt.IsZero() {
			folders[i].CreatedAt = now
		}
		folders[i].UpdatedAt = now
	}

	resolve := func(ref *string) *string {
		if ref == nil {
			return nil
		}
		if fresh, ok := remapped[*ref]; ok {
			return &fresh
		}
		if existing[*ref] {
			return ref
		}
		return nil
	}

	for i := range folders {
		folders[i].ParentID = resolve(folders[i].ParentID)
	}
	for i := range notes {
		notes[i].ID = newID()
		notes[i].FolderID = resolve(notes[i].FolderID)
		if notes[i].CreatedAt.IsZero() {
			notes[i].CreatedAt = now
		}
		notes[i].UpdatedAt = now
	}

	r.notes = append(notes, r.notes...)
	r.folders = append(r.folders, folders...)
	r.persistNotes()
	r.persistFolders()
	return len(notes), len(folders)
}

// SearchNotes returns the notes whose title or content contains the query,
// newest first.
func (r *Repository) SearchNotes(query string) []models.Note {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var results []models.Note
	for _, note := range r.notes {
		if containsFold(note.Title, query) || containsFold(note.Content, query) {
			results = append(results, note)
		}
	}

	sortByUpdatedDesc(results)
	return results
}
