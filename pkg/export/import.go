package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"quill/pkg/models"
)

// ImportFile is one file handed over for import. The name decides the
// format: ".json" is a collection payload, ".md" and ".txt" become single
// notes.
type ImportFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ImportedData is everything extracted from a batch of import files.
// Per-file failures land in Errors; one bad file never aborts the batch.
type ImportedData struct {
	Notes   []models.Note
	Folders []models.Folder
	Errors  []string
}

// collectionPayload is the shape of a .json import: the same structure the
// all-data export produces. Both collections are optional.
type collectionPayload struct {
	Notes   []models.Note   `json:"notes"`
	Folders []models.Folder `json:"folders"`
}

// ParseImportFiles extracts notes and folders from the given files. JSON
// files contribute their collections as-is; Markdown and plain-text files
// are wrapped into a note titled after the filename. Unsupported extensions
// are reported, not imported.
func ParseImportFiles(files []ImportFile) ImportedData {
	var result ImportedData

	for _, file := range files {
		name := strings.ToLower(file.Name)
		switch {
		case strings.HasSuffix(name, ".json"):
			var payload collectionPayload
			if err := json.Unmarshal([]byte(file.Content), &payload); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Error importing %s: %v", file.Name, err))
				continue
			}
			result.Notes = append(result.Notes, payload.Notes...)
			result.Folders = append(result.Folders, payload.Folders...)

		case strings.HasSuffix(name, ".md"), strings.HasSuffix(name, ".txt"):
			ext := name[strings.LastIndex(name, "."):]
			title := file.Name[:len(file.Name)-len(ext)]
			result.Notes = append(result.Notes, models.Note{
				Title:   title,
				Content: file.Content,
			})

		default:
			result.Errors = append(result.Errors,
				fmt.Sprintf("Error importing %s: unsupported file type", file.Name))
		}
	}

	return result
}
