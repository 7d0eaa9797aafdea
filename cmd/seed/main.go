// Command seed fills a data directory with sample notes and folders for
// development and manual testing.
package main

import (
	"flag"
	"fmt"
	"os"

	"quill/pkg/config"
	"quill/pkg/repository"
	"quill/pkg/storage"
)

var sampleNotes = []struct {
	title    string
	content  string
	category string
	folder   string
}{
	{
		title:    "Welcome",
		category: "general",
		content: "<h1>Welcome</h1><p>This note was generated by the seed tool. " +
			"Use <b>bold</b>, <i>italic</i> and lists to try the editor.</p>" +
			"<ul><li>First item</li><li>Second item</li></ul>",
	},
	{
		title:    "Meeting Notes",
		category: "work",
		folder:   "Work",
		content: "<p>Discussed the quarterly roadmap.</p>" +
			"<p>Action items:</p><ul><li>Draft the proposal</li><li>Schedule a follow-up</li></ul>",
	},
	{
		title:    "Groceries",
		category: "personal",
		folder:   "Personal",
		content:  "<ul><li>Milk</li><li>Eggs</li><li>Bread</li><li>Coffee</li></ul>",
	},
	{
		title:    "Reading List",
		category: "personal",
		folder:   "Personal",
		content:  "<p>Books to pick up:</p><ol><li>The Go Programming Language</li><li>Designing Data-Intensive Applications</li></ol>",
	},
}

func main() {
	dataPath := flag.String("data", "", "data directory (defaults to the configured path)")
	flag.Parse()

	dir := *dataPath
	if dir == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		dir = cfg.DataPath
	}

	store, err := storage.NewLocalStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	repo := repository.New(store)
	repo.Load()

	folders := make(map[string]string)
	for _, sample := range sampleNotes {
		if sample.folder == "" {
			continue
		}
		if _, ok := folders[sample.folder]; !ok {
			folder := repo.CreateFolder(sample.folder, nil)
			folders[sample.folder] = folder.ID
		}
	}

	for _, sample := range sampleNotes {
		var folderID *string
		if id, ok := folders[sample.folder]; ok {
			folderID = &id
		}
		note := repo.CreateNote(folderID)
		note.Title = sample.title
		note.Content = sample.content
		note.Category = sample.category
		repo.UpdateNote(note)
	}

	fmt.Printf("Seeded %d notes and %d folders in %s\n", len(sampleNotes), len(folders), dir)
}
