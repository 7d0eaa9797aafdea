// Package cloudsync mirrors the note and folder collections to a hosted
// per-user document store. Conflict policy is last writer wins at the whole
// collection level; there is no per-field merge and no detection of
// concurrent edits from other devices.
package cloudsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"quill/pkg/models"
)

// callTimeout bounds every remote call so a hung network request cannot pin
// the syncing flag forever.
const callTimeout = 30 * time.Second

// Collections is the result of a pull: both collections as plain slices.
type Collections struct {
	Notes   []models.Note
	Folders []models.Folder
}

// Snapshot supplies the current in-memory collections to the auto-sync
// timer.
type Snapshot func() ([]models.Note, []models.Folder)

// Adapter pushes and pulls the collections for the signed-in user. All
// operations are best effort: without a user id they are no-ops, and remote
// failures are recorded in the status rather than retried.
type Adapter struct {
	mu          sync.Mutex
	store       DocStore
	userID      string
	status      models.SyncStatus
	subscribers map[int]func(models.SyncStatus)
	nextSub     int

	autoStop     chan struct{}
	autoInterval time.Duration
	snapshot     Snapshot
}

// New creates an adapter over the given document store.
func New(store DocStore) *Adapter {
	return &Adapter{
		store:       store,
		subscribers: make(map[int]func(models.SyncStatus)),
	}
}

// SetUserID records the authenticated user, or "" on sign-out. Auto-sync
// keeps running only while a user is set.
func (a *Adapter) SetUserID(userID string) {
	a.mu.Lock()
	a.userID = userID
	a.mu.Unlock()

	if userID == "" {
		a.StopAutoSync()
	}
}

// Subscribe registers a status observer and returns its unsubscribe
// function. The observer is called with a copy after every transition.
func (a *Adapter) Subscribe(fn func(models.SyncStatus)) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subscribers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

// Status returns a copy of the current sync status.
func (a *Adapter) Status() models.SyncStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusCopy()
}

// statusCopy must be called with the mutex held.
func (a *Adapter) statusCopy() models.SyncStatus {
	status := a.status
	status.SyncErrors = append([]string(nil), a.status.SyncErrors...)
	return status
}

// snapshotNotify captures the subscribers and status under the lock and
// returns a closure that delivers the notification. Callbacks run after the
// lock is released, so a subscriber may call back into the adapter. Must be
// called with the mutex held.
func (a *Adapter) snapshotNotify() func() {
	status := a.statusCopy()
	subs := make([]func(models.SyncStatus), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subs = append(subs, fn)
	}
	return func() {
		for _, fn := range subs {
			fn(status)
		}
	}
}

// notePath and folderPath address the per-user sub-collections.
func notePath(userID string) string   { return "users/" + userID + "/notes" }
func folderPath(userID string) string { return "users/" + userID + "/folders" }

// Push writes every note and folder as an individual record keyed by its
// local id, then the per-user metadata record. Without a signed-in user it
// returns nil immediately and touches nothing.
func (a *Adapter) Push(ctx context.Context, notes []models.Note, folders []models.Folder) error {
	a.mu.Lock()
	userID := a.userID
	if userID == "" {
		a.mu.Unlock()
		return nil
	}
	a.status.Syncing = true
	a.status.SyncErrors = nil
	a.status.PendingChanges = len(notes) + len(folders)
	deliver := a.snapshotNotify()
	a.mu.Unlock()
	deliver()

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	err := a.pushAll(ctx, userID, notes, folders)

	a.mu.Lock()
	a.status.Syncing = false
	if err != nil {
		a.status.SyncErrors = append(a.status.SyncErrors, err.Error())
		deliver = a.snapshotNotify()
		a.mu.Unlock()
		deliver()
		return fmt.Errorf("cloud push: %w", err)
	}
	now := time.Now()
	a.status.LastSyncTime = &now
	a.status.PendingChanges = 0
	deliver = a.snapshotNotify()
	a.mu.Unlock()
	deliver()
	return nil
}

// pushAll issues the remote writes sequentially, notes then folders then
// metadata, stopping at the first failure.
func (a *Adapter) pushAll(ctx context.Context, userID string, notes []models.Note, folders []models.Folder) error {
	for _, note := range notes {
		if err := a.store.Write(ctx, notePath(userID), note.ID, note); err != nil {
			return err
		}
	}
	for _, folder := range folders {
		if err := a.store.Write(ctx, folderPath(userID), folder.ID, folder); err != nil {
			return err
		}
	}

	meta := map[string]interface{}{
		"lastSyncTime": time.Now().Format(time.RFC3339Nano),
		"notesCount":   len(notes),
		"foldersCount": len(folders),
	}
	return a.store.Write(ctx, "users", userID, meta)
}

// Pull fetches both collections: notes ordered by last update descending,
// folders unordered. Without a signed-in user it returns (nil, nil).
func (a *Adapter) Pull(ctx context.Context) (*Collections, error) {
	a.mu.Lock()
	userID := a.userID
	if userID == "" {
		a.mu.Unlock()
		return nil, nil
	}
	a.status.Syncing = true
	deliver := a.snapshotNotify()
	a.mu.Unlock()
	deliver()

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	result, err := a.pullAll(ctx, userID)

	a.mu.Lock()
	a.status.Syncing = false
	if err != nil {
		a.status.SyncErrors = append(a.status.SyncErrors, err.Error())
		deliver = a.snapshotNotify()
		a.mu.Unlock()
		deliver()
		return nil, fmt.Errorf("cloud pull: %w", err)
	}
	now := time.Now()
	a.status.LastSyncTime = &now
	deliver = a.snapshotNotify()
	a.mu.Unlock()
	deliver()
	return result, nil
}

func (a *Adapter) pullAll(ctx context.Context, userID string) (*Collections, error) {
	noteRecords, err := a.store.ReadAll(ctx, notePath(userID), "updatedAt")
	if err != nil {
		return nil, err
	}
	folderRecords, err := a.store.ReadAll(ctx, folderPath(userID), "")
	if err != nil {
		return nil, err
	}

	result := &Collections{}
	for _, record := range noteRecords {
		var note models.Note
		if err := json.Unmarshal(record, &note); err != nil {
			return nil, fmt.Errorf("failed to decode note record: %w", err)
		}
		result.Notes = append(result.Notes, note)
	}
	for _, record := range folderRecords {
		var folder models.Folder
		if err := json.Unmarshal(record, &folder); err != nil {
			return nil, fmt.Errorf("failed to decode folder record: %w", err)
		}
		result.Folders = append(result.Folders, folder)
	}
	return result, nil
}

// StartAutoSync pushes the snapshot's collections every interval until
// StopAutoSync or sign-out. Calling it again restarts the timer with the
// new settings.
func (a *Adapter) StartAutoSync(interval time.Duration, snapshot Snapshot) {
	a.StopAutoSync()

	a.mu.Lock()
	stop := make(chan struct{})
	a.autoStop = stop
	a.autoInterval = interval
	a.snapshot = snapshot
	a.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				notes, folders := snapshot()
				log.Printf("Auto sync triggered: %d notes, %d folders", len(notes), len(folders))
				if err := a.Push(context.Background(), notes, folders); err != nil {
					log.Printf("Auto sync failed: %v", err)
				}
			case <-stop:
				return
			}
		}
	}()
}

// StopAutoSync halts the auto-sync timer if it is running.
func (a *Adapter) StopAutoSync() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.autoStop != nil {
		close(a.autoStop)
		a.autoStop = nil
	}
}
