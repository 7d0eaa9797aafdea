package storage

import (
	"archive/zip"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Backup creates a zip archive of the store's key files in the data
// directory and returns the archive path.
func (s *LocalStore) Backup() (string, error) {
	timestamp := time.Now().Format("20060102-1504")
	zipPath := filepath.Join(s.dataDir, "backup-"+timestamp+".zip")

	// Remove old zip if exists
	if _, err := os.Stat(zipPath); err == nil {
		if err := os.Remove(zipPath); err != nil {
			return "", err
		}
	}

	zipFile, err := os.Create(zipPath)
	if err != nil {
		return "", err
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	for _, key := range []string{NotesKey, FoldersKey} {
		f, err := os.Open(s.fileFor(key))
		if err != nil {
			continue // nothing stored under this key yet
		}
		w, err := zipWriter.Create(key + ".json")
		if err != nil {
			f.Close()
			continue
		}
		if _, err := io.Copy(w, f); err != nil {
			f.Close()
			continue
		}
		f.Close()
	}

	log.Printf("Backup zip created at: %s", zipPath)
	return zipPath, nil
}
