package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"quill/pkg/models"
	"quill/pkg/storage"
)

func newTestRepo(t *testing.T) (*Repository, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repo := New(store)
	repo.Load()
	return repo, store
}

func TestCreateNote_HeadInsertion(t *testing.T) {
	repo, _ := newTestRepo(t)

	first := repo.CreateNote(nil)
	second := repo.CreateNote(nil)

	notes := repo.Notes()
	require.Len(t, notes, 2)
	require.Equal(t, second.ID, notes[0].ID)
	require.Equal(t, first.ID, notes[1].ID)
}

func TestCreateNote_UsesSelectedFolder(t *testing.T) {
	repo, _ := newTestRepo(t)

	folder := repo.CreateFolder("Work", nil)
	repo.SelectFolder(&folder.ID)

	note := repo.CreateNote(nil)
	require.NotNil(t, note.FolderID)
	require.Equal(t, folder.ID, *note.FolderID)
}

func TestUpdateNote_UnknownIDIsNoOp(t *testing.T) {
	repo, _ := newTestRepo(t)
	existing := repo.CreateNote(nil)

	ghost := existing
	ghost.ID = "does-not-exist"
	ghost.Title = "ghost"
	repo.UpdateNote(ghost)

	notes := repo.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, existing.ID, notes[0].ID)
	require.Empty(t, notes[0].Title)
}

func TestUpdateNote_BumpsUpdatedAt(t *testing.T) {
	repo, _ := newTestRepo(t)
	note := repo.CreateNote(nil)

	note.Title = "edited"
	repo.UpdateNote(note)

	stored, err := repo.GetNote(note.ID)
	require.NoError(t, err)
	require.Equal(t, "edited", stored.Title)
	require.False(t, stored.UpdatedAt.Before(note.UpdatedAt))
}

func TestDeleteNote_SelectionFallsBack(t *testing.T) {
	repo, _ := newTestRepo(t)

	older := repo.CreateNote(nil)
	newer := repo.CreateNote(nil)
	repo.SelectNote(newer.ID)

	repo.DeleteNote(newer.ID)

	selected, ok := repo.SelectedNote()
	require.True(t, ok)
	require.Equal(t, older.ID, selected.ID)

	repo.DeleteNote(older.ID)
	_, ok = repo.SelectedNote()
	require.False(t, ok)
}

func TestMoveNote(t *testing.T) {
	repo, _ := newTestRepo(t)

	folder := repo.CreateFolder("Inbox", nil)
	note := repo.CreateNote(nil)

	repo.MoveNote(note.ID, &folder.ID)
	stored, err := repo.GetNote(note.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FolderID)
	require.Equal(t, folder.ID, *stored.FolderID)

	repo.MoveNote(note.ID, nil)
	stored, err = repo.GetNote(note.ID)
	require.NoError(t, err)
	require.Nil(t, stored.FolderID)
}

func TestDeleteFolder_CascadesAndReparentsNotes(t *testing.T) {
	repo, _ := newTestRepo(t)

	root := repo.CreateFolder("root", nil)
	child := repo.CreateFolder("child", &root.ID)
	grandchild := repo.CreateFolder("grandchild", &child.ID)
	sibling := repo.CreateFolder("sibling", nil)

	inRoot := repo.CreateNote(&root.ID)
	inGrandchild := repo.CreateNote(&grandchild.ID)
	inSibling := repo.CreateNote(&sibling.ID)

	repo.DeleteFolder(root.ID)

	folders := repo.Folders()
	require.Len(t, folders, 1)
	require.Equal(t, sibling.ID, folders[0].ID)

	// Notes from the whole deleted subtree land at the root; others keep
	// their folder.
	for _, id := range []string{inRoot.ID, inGrandchild.ID} {
		note, err := repo.GetNote(id)
		require.NoError(t, err)
		require.Nil(t, note.FolderID)
	}
	note, err := repo.GetNote(inSibling.ID)
	require.NoError(t, err)
	require.Equal(t, sibling.ID, *note.FolderID)
}

func TestDeleteFolder_ClearsSelection(t *testing.T) {
	repo, _ := newTestRepo(t)

	folder := repo.CreateFolder("doomed", nil)
	repo.SelectFolder(&folder.ID)

	repo.DeleteFolder(folder.ID)
	require.Nil(t, repo.SelectedFolderID())
}

func TestUpdateFolder_RejectsCycles(t *testing.T) {
	repo, _ := newTestRepo(t)

	parent := repo.CreateFolder("parent", nil)
	child := repo.CreateFolder("child", &parent.ID)

	t.Run("self parent", func(t *testing.T) {
		bad := parent
		bad.ParentID = &parent.ID
		require.Error(t, repo.UpdateFolder(bad))
	})

	t.Run("descendant parent", func(t *testing.T) {
		bad := parent
		bad.ParentID = &child.ID
		require.Error(t, repo.UpdateFolder(bad))
	})

	t.Run("valid move", func(t *testing.T) {
		other := repo.CreateFolder("other", nil)
		moved := child
		moved.ParentID = &other.ID
		require.NoError(t, repo.UpdateFolder(moved))
	})
}

func TestToggleFolder(t *testing.T) {
	repo, _ := newTestRepo(t)

	folder := repo.CreateFolder("toggle", nil)
	require.True(t, folder.IsExpanded)

	repo.ToggleFolder(folder.ID)
	require.False(t, repo.Folders()[0].IsExpanded)

	repo.ToggleFolder(folder.ID)
	require.True(t, repo.Folders()[0].IsExpanded)
}

func TestLoad_RoundTripsThroughStore(t *testing.T) {
	dataDir := t.TempDir()

	store, err := storage.NewLocalStore(dataDir)
	require.NoError(t, err)
	repo := New(store)
	repo.Load()

	folder := repo.CreateFolder("キャビネット", nil)
	note := repo.CreateNote(&folder.ID)
	note.Title = "round trip"
	note.Content = "<p>body</p>"
	note.Category = "journal"
	repo.UpdateNote(note)
	require.NoError(t, store.Close())

	// A fresh repository over the same directory sees identical data.
	store2, err := storage.NewLocalStore(dataDir)
	require.NoError(t, err)
	defer store2.Close()
	repo2 := New(store2)
	repo2.Load()

	notes := repo2.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, note.ID, notes[0].ID)
	require.Equal(t, "round trip", notes[0].Title)
	require.Equal(t, "<p>body</p>", notes[0].Content)
	require.Equal(t, "journal", notes[0].Category)
	require.Equal(t, folder.ID, *notes[0].FolderID)
	require.True(t, notes[0].CreatedAt.Equal(note.CreatedAt))

	folders := repo2.Folders()
	require.Len(t, folders, 1)
	require.Equal(t, "キャビネット", folders[0].Name)
	require.True(t, folders[0].IsExpanded)
}

func TestLoad_MalformedJSONLeavesCollectionEmpty(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dataDir, storage.NotesKey+".json"), []byte("{not json"), 0644))

	store, err := storage.NewLocalStore(dataDir)
	require.NoError(t, err)
	defer store.Close()

	repo := New(store)
	repo.Load()
	require.Empty(t, repo.Notes())
}

func TestSearchNotes(t *testing.T) {
	repo, _ := newTestRepo(t)

	groceries := repo.CreateNote(nil)
	groceries.Title = "Groceries"
	groceries.Content = "milk and EGGS"
	repo.UpdateNote(groceries)

	journal := repo.CreateNote(nil)
	journal.Title = "Journal"
	journal.Content = "today I bought eggs"
	repo.UpdateNote(journal)

	results := repo.SearchNotes("eggs")
	require.Len(t, results, 2)
	// journal was updated last, so it sorts first.
	require.Equal(t, journal.ID, results[0].ID)

	require.Empty(t, repo.SearchNotes("zebra"))
}

func TestImport_AssignsFreshIDsAndRemapsFolders(t *testing.T) {
	repo, _ := newTestRepo(t)
	existing := repo.CreateNote(nil)

	oldFolderID := "imported-folder"
	imported := []models.Note{
		{ID: existing.ID, Title: "Filed", FolderID: &oldFolderID},
		{ID: "n2", Title: "Loose"},
	}
	folders := []models.Folder{{ID: oldFolderID, Name: "Archive"}}

	notesCount, foldersCount := repo.Import(imported, folders)
	require.Equal(t, 2, notesCount)
	require.Equal(t, 1, foldersCount)

	allFolders := repo.Folders()
	require.Len(t, allFolders, 1)
	archive := allFolders[0]
	require.Equal(t, "Archive", archive.Name)
	require.NotEqual(t, oldFolderID, archive.ID)

	notes := repo.Notes()
	require.Len(t, notes, 3)
	// imported notes land at the head, ahead of existing data
	require.Equal(t, "Filed", notes[0].Title)
	require.NotEqual(t, existing.ID, notes[0].ID)
	require.NotNil(t, notes[0].FolderID)
	require.Equal(t, archive.ID, *notes[0].FolderID)
	require.Equal(t, existing.ID, notes[2].ID)
}

func TestImport_UnknownFolderReferenceDropsToRoot(t *testing.T) {
	repo, _ := newTestRepo(t)

	dangling := "never-existed"
	notesCount, _ := repo.Import([]models.Note{{Title: "Orphan", FolderID: &dangling}}, nil)
	require.Equal(t, 1, notesCount)

	notes := repo.Notes()
	require.Len(t, notes, 1)
	require.Nil(t, notes[0].FolderID)
	require.False(t, notes[0].CreatedAt.IsZero())
}

func TestImport_KeepsReferenceToExistingFolder(t *testing.T) {
	repo, _ := newTestRepo(t)
	work := repo.CreateFolder("Work", nil)

	repo.Import([]models.Note{{Title: "Memo", FolderID: &work.ID}}, nil)

	notes := repo.Notes()
	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].FolderID)
	require.Equal(t, work.ID, *notes[0].FolderID)
}

func TestImport_Persists(t *testing.T) {
	repo, store := newTestRepo(t)

	repo.Import([]models.Note{{Title: "Kept"}}, []models.Folder{{Name: "Box"}})

	reloaded := New(store)
	reloaded.Load()
	require.Len(t, reloaded.Notes(), 1)
	require.Len(t, reloaded.Folders(), 1)
	require.Equal(t, "Kept", reloaded.Notes()[0].Title)
	require.Equal(t, "Box", reloaded.Folders()[0].Name)
}
