package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Fixed storage keys. Each key maps to one JSON file in the data directory
// holding the whole collection as a single array.
const (
	NotesKey   = "notes-app-data"
	FoldersKey = "notes-app-folders"
)

const tempFilePrefix = "quill-tmp-"

// LocalStore is a synchronous key-value store backed by one JSON file per
// key. Writes replace the whole value; there are no partial writes and no
// transactions.
type LocalStore struct {
	dataDir      string
	mutex        sync.RWMutex
	watcher      *fsnotify.Watcher
	fileModTimes map[string]time.Time
	onChange     func(key string)
}

// NewLocalStore creates a store rooted at dataDir.
func NewLocalStore(dataDir string) (*LocalStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := &LocalStore{
		dataDir:      dataDir,
		fileModTimes: make(map[string]time.Time),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Warning: Could not create file watcher: %v", err)
	} else {
		store.watcher = watcher
		if err := watcher.Add(dataDir); err != nil {
			log.Printf("Warning: Could not watch data directory: %v", err)
		}
	}

	return store, nil
}

// DataDir returns the data directory path.
func (s *LocalStore) DataDir() string {
	return s.dataDir
}

func (s *LocalStore) fileFor(key string) string {
	return filepath.Join(s.dataDir, key+".json")
}

// Get returns the stored value for key. A missing key yields (nil, nil);
// the caller decides what an empty collection looks like.
func (s *LocalStore) Get(key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := os.ReadFile(s.fileFor(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set replaces the value under key. The write goes through a temp file and
// rename so readers never see a torn file.
func (s *LocalStore) Set(key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	filename := s.fileFor(key)
	if err := writeFileAtomic(filename, value, 0644); err != nil {
		return err
	}

	// Record our own write so the watcher does not report it back to us.
	if fileInfo, err := os.Stat(filename); err == nil {
		s.fileModTimes[filename] = fileInfo.ModTime()
	}
	return nil
}

// Watch starts reporting external modifications of key files through
// onChange. Self-writes are suppressed via modification-time tracking.
func (s *LocalStore) Watch(onChange func(key string)) {
	s.mutex.Lock()
	s.onChange = onChange
	s.mutex.Unlock()

	if s.watcher == nil {
		return
	}

	go func() {
		for {
			select {
			case event, ok := <-s.watcher.Events:
				if !ok {
					return
				}
				s.handleEvent(event)
			case err, ok := <-s.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Watcher error: %v", err)
			}
		}
	}()
}

func (s *LocalStore) handleEvent(event fsnotify.Event) {
	filename := filepath.Base(event.Name)
	if !strings.HasSuffix(filename, ".json") || strings.HasPrefix(filename, tempFilePrefix) {
		return
	}
	key := strings.TrimSuffix(filename, ".json")
	if key != NotesKey && key != FoldersKey {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	fileInfo, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	s.mutex.Lock()
	lastModTime, seen := s.fileModTimes[event.Name]
	currentModTime := fileInfo.ModTime()
	if seen && !currentModTime.After(lastModTime) {
		// Probably our own write
		s.mutex.Unlock()
		return
	}
	s.fileModTimes[event.Name] = currentModTime
	onChange := s.onChange
	s.mutex.Unlock()

	log.Printf("External change detected for key %s", key)
	if onChange != nil {
		onChange(key)
	}
}

// Close shuts down the file watcher.
func (s *LocalStore) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
