package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"quill/pkg/auth"
	"quill/pkg/cloudsync"
	"quill/pkg/config"
	"quill/pkg/errors"
	"quill/pkg/export"
	"quill/pkg/models"
	"quill/pkg/performance"
	"quill/pkg/repository"
	"quill/pkg/search"
	"quill/pkg/storage"
	"quill/pkg/types"
)

// App struct
type App struct {
	ctx         context.Context
	config      *config.Config
	store       *storage.LocalStore
	repo        *repository.Repository
	authManager *auth.Manager
	sync        *cloudsync.Adapter
	autosave    *performance.Debouncer

	// In-note search state; one active search at a time, like the editor's
	// search modal.
	searchEngine *search.Engine
	searchQuery  string
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved so we can
// call the runtime methods.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration, using defaults: %v", err)
		cfg = config.Defaults()
	}
	a.config = cfg

	store, err := storage.NewLocalStore(cfg.DataPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	a.store = store

	a.repo = repository.New(store)
	a.repo.Load()

	// Reload and repaint when another process touches the key files.
	store.Watch(func(key string) {
		a.repo.Load()
		runtime.EventsEmit(a.ctx, "store:changed", key)
	})

	a.authManager = auth.NewManager(cfg.OAuth)

	docStore := cloudsync.NewHTTPDocStore(cfg.Sync.EndpointURL, a.authManager.CurrentToken)
	a.sync = cloudsync.New(docStore)
	a.sync.Subscribe(func(status models.SyncStatus) {
		runtime.EventsEmit(a.ctx, "sync:status", types.ConvertToWailsSyncStatus(status))
	})

	a.autosave = performance.NewDebouncer(time.Duration(cfg.AutoSaveInterval) * time.Millisecond)
	a.searchEngine = search.NewEngine("")

	go a.startSessionCleanup()

	log.Printf("Quill initialized:")
	log.Printf("  Configuration file: %s", config.GetConfigFilePath())
	log.Printf("  Data directory: %s", cfg.DataPath)
	log.Printf("  Cloud configured: %v", cfg.CloudConfigured())
}

// shutdown stops background work on exit.
func (a *App) shutdown(ctx context.Context) {
	if a.sync != nil {
		a.sync.StopAutoSync()
	}
	if a.autosave != nil {
		a.autosave.Clear()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// reportError logs an error and emits its frontend shape so the UI can show
// the user-facing message.
func (a *App) reportError(err *errors.AppError) {
	err.Log()
	runtime.EventsEmit(a.ctx, "app:error", errors.ToFrontendError(err))
}

// startSessionCleanup runs a background goroutine to clean up expired sessions
func (a *App) startSessionCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.authManager != nil {
				a.authManager.CleanupExpiredSessions()
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// Note management methods

func (a *App) GetAllNotes() []types.WailsNote {
	return types.ConvertToWailsNotes(a.repo.Notes())
}

func (a *App) GetNote(id string) (types.WailsNote, error) {
	note, err := a.repo.GetNote(id)
	if err != nil {
		return types.WailsNote{}, err
	}
	return types.ConvertToWailsNote(note), nil
}

// CreateNote creates an empty note in the given folder ("" means the
// currently selected folder).
func (a *App) CreateNote(folderID string) types.WailsNote {
	note := a.repo.CreateNote(types.StringToPtr(folderID))
	return types.ConvertToWailsNote(note)
}

// SaveNote replaces the stored note with the edited fields. Saving a note
// that no longer exists is silently ignored.
func (a *App) SaveNote(id, title, content, category string) {
	validator := errors.NewValidator()
	if result := validator.ValidateNoteContent(content); !result.IsValid {
		result.GetFirstError().Log()
		return
	}

	note, err := a.repo.GetNote(id)
	if err != nil {
		return
	}
	note.Title = title
	note.Content = content
	note.Category = category
	a.repo.UpdateNote(note)
}

// AutoSaveNote debounces SaveNote per note so a typing burst produces one
// write.
func (a *App) AutoSaveNote(id, title, content, category string) {
	if !a.config.AutoSave {
		return
	}
	a.autosave.Debounce(id, func() {
		a.SaveNote(id, title, content, category)
	})
}

func (a *App) DeleteNote(id string) {
	a.autosave.Cancel(id)
	a.repo.DeleteNote(id)
}

// MoveNote reassigns a note's folder; "" moves it to the root.
func (a *App) MoveNote(noteID, folderID string) {
	a.repo.MoveNote(noteID, types.StringToPtr(folderID))
}

func (a *App) SelectNote(id string) {
	a.repo.SelectNote(id)
}

// GetSelectedNote returns the selected note, or a zero note when nothing is
// selected.
func (a *App) GetSelectedNote() types.WailsNote {
	note, ok := a.repo.SelectedNote()
	if !ok {
		return types.WailsNote{}
	}
	return types.ConvertToWailsNote(note)
}

// SearchNotes returns the notes whose title or content contains the query,
// newest first.
func (a *App) SearchNotes(query string) []types.WailsNote {
	return types.ConvertToWailsNotes(a.repo.SearchNotes(query))
}

// Folder management methods

func (a *App) GetAllFolders() []types.WailsFolder {
	return types.ConvertToWailsFolders(a.repo.Folders())
}

func (a *App) CreateFolder(name, parentID string) (types.WailsFolder, error) {
	validator := errors.NewValidator()
	if result := validator.ValidateFolderName(name); !result.IsValid {
		err := result.GetFirstError()
		err.Log()
		return types.WailsFolder{}, err
	}

	folder := a.repo.CreateFolder(name, types.StringToPtr(parentID))
	return types.ConvertToWailsFolder(folder), nil
}

func (a *App) RenameFolder(id, name string) error {
	validator := errors.NewValidator()
	if result := validator.ValidateFolderName(name); !result.IsValid {
		err := result.GetFirstError()
		err.Log()
		return err
	}

	for _, folder := range a.repo.Folders() {
		if folder.ID == id {
			folder.Name = name
			return a.repo.UpdateFolder(folder)
		}
	}
	return errors.ErrFolderNotFound
}

// MoveFolder reparents a folder; "" moves it to the root. Moving a folder
// into its own subtree is rejected.
func (a *App) MoveFolder(id, parentID string) error {
	for _, folder := range a.repo.Folders() {
		if folder.ID == id {
			folder.ParentID = types.StringToPtr(parentID)
			return a.repo.UpdateFolder(folder)
		}
	}
	return errors.ErrFolderNotFound
}

func (a *App) DeleteFolder(id string) {
	a.repo.DeleteFolder(id)
}

func (a *App) ToggleFolder(id string) {
	a.repo.ToggleFolder(id)
}

// SelectFolder sets the folder new notes land in; "" selects the root.
func (a *App) SelectFolder(id string) {
	a.repo.SelectFolder(types.StringToPtr(id))
}

// In-note search methods

// searchState packages the engine state for the frontend.
func (a *App) searchState() types.SearchState {
	return types.SearchState{
		Query:        a.searchQuery,
		TotalMatches: a.searchEngine.MatchCount(),
		CurrentMatch: a.searchEngine.CurrentIndex(),
		Runs:         a.searchEngine.Document().Runs(),
	}
}

// SearchInNote runs an incremental in-note search over the note's rendered
// text and returns the highlighted document runs.
func (a *App) SearchInNote(noteID, query string) (types.SearchState, error) {
	note, err := a.repo.GetNote(noteID)
	if err != nil {
		return types.SearchState{}, err
	}

	a.searchEngine.SetText(search.ExtractText(note.Content))
	a.searchQuery = query
	a.searchEngine.Search(query)
	return a.searchState(), nil
}

// NextMatch advances the current match with wraparound.
func (a *App) NextMatch() types.SearchState {
	a.searchEngine.Next()
	return a.searchState()
}

// PrevMatch steps the current match backwards with wraparound.
func (a *App) PrevMatch() types.SearchState {
	a.searchEngine.Prev()
	return a.searchState()
}

// ClearSearch drops all highlight markers, restoring the plain document.
func (a *App) ClearSearch() types.SearchState {
	a.searchEngine.Clear()
	a.searchQuery = ""
	return a.searchState()
}

// Settings methods

// GetSettings returns the editable settings. OAuth client credentials are
// excluded; the frontend only ever sees the projection.
func (a *App) GetSettings() types.WailsSettings {
	return types.ConvertToWailsSettings(a.config)
}

// UpdateSettings replaces the editable settings and persists them in one
// write. The data path and OAuth client configuration cannot be changed
// from the frontend.
func (a *App) UpdateSettings(updated types.WailsSettings) error {
	updated.ApplyTo(a.config)

	if err := a.config.Save(); err != nil {
		appErr := errors.Wrap(err, errors.ErrTypeConfig, "CONFIG_SAVE_FAILED", "failed to save configuration")
		a.reportError(appErr)
		return appErr
	}

	a.autosave.SetDuration(time.Duration(a.config.AutoSaveInterval) * time.Millisecond)
	a.applyAutoSync()
	return nil
}

func (a *App) UpdateShortcut(id, keys string) error {
	return a.config.UpdateShortcut(id, keys)
}

func (a *App) ResetShortcuts() error {
	return a.config.ResetShortcuts()
}

// Authentication methods

// IsCloudConfigured reports whether this installation has an OAuth client
// configured at all.
func (a *App) IsCloudConfigured() bool {
	return a.authManager.Enabled()
}

func (a *App) IsAuthenticated() bool {
	_, ok := a.authManager.CurrentSession()
	return ok
}

// Login runs the OAuth flow in the system browser and wires the signed-in
// user into the sync adapter.
func (a *App) Login() (string, error) {
	session, err := a.authManager.Login(a.ctx, func(url string) {
		runtime.BrowserOpenURL(a.ctx, url)
	})
	if err != nil {
		return "", err
	}

	a.sync.SetUserID(session.UserID)
	a.applyAutoSync()
	log.Printf("Signed in as %s", session.Email)
	return session.Email, nil
}

func (a *App) Logout() {
	a.authManager.Logout()
	a.sync.SetUserID("")
}

// Cloud sync methods

// applyAutoSync starts or stops the auto-sync timer to match the current
// settings and sign-in state.
func (a *App) applyAutoSync() {
	if a.config.Sync.AutoSync && a.IsAuthenticated() {
		interval := time.Duration(a.config.Sync.IntervalMS) * time.Millisecond
		a.sync.StartAutoSync(interval, func() ([]models.Note, []models.Folder) {
			return a.repo.Notes(), a.repo.Folders()
		})
	} else {
		a.sync.StopAutoSync()
	}
}

// SyncToCloud pushes both collections. A no-op when signed out.
func (a *App) SyncToCloud() error {
	return a.sync.Push(a.ctx, a.repo.Notes(), a.repo.Folders())
}

// SyncFromCloud pulls both collections and replaces the local data with
// them, mirroring to the store. A no-op when signed out.
func (a *App) SyncFromCloud() error {
	result, err := a.sync.Pull(a.ctx)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	a.repo.Replace(result.Notes, result.Folders)
	runtime.EventsEmit(a.ctx, "store:changed", "cloud")
	return nil
}

func (a *App) GetSyncStatus() types.WailsSyncStatus {
	return types.ConvertToWailsSyncStatus(a.sync.Status())
}

// Export methods

// ExportResult reports how a save-dialog export ended.
type ExportResult struct {
	Status string `json:"status"` // "saved", "cancelled" or "error"
	Path   string `json:"path,omitempty"`
}

// saveWithDialog prompts for a destination and writes data there. A closed
// dialog is a cancelled export, not an error.
func (a *App) saveWithDialog(defaultFilename, displayName, pattern string, data []byte) (ExportResult, error) {
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export Note",
		DefaultFilename: defaultFilename,
		Filters: []runtime.FileFilter{
			{DisplayName: displayName, Pattern: pattern},
		},
	})
	if err != nil {
		appErr := errors.Wrap(err, errors.ErrTypeExport, "EXPORT_DIALOG_FAILED", "save dialog failed")
		a.reportError(appErr)
		return ExportResult{Status: "error"}, appErr
	}
	if path == "" {
		return ExportResult{Status: "cancelled"}, nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		appErr := errors.Wrap(err, errors.ErrTypeExport, "EXPORT_WRITE_FAILED", "failed to write export file").
			WithContext("path", path)
		a.reportError(appErr)
		return ExportResult{Status: "error"}, appErr
	}
	return ExportResult{Status: "saved", Path: path}, nil
}

func (a *App) ExportNoteTXT(id string) (ExportResult, error) {
	note, err := a.repo.GetNote(id)
	if err != nil {
		return ExportResult{Status: "error"}, err
	}
	return a.saveWithDialog(export.SafeFilename(note.Title, ".txt"), "Text Files (*.txt)", "*.txt",
		[]byte(export.ToTXT(note)))
}

func (a *App) ExportNoteMarkdown(id string) (ExportResult, error) {
	note, err := a.repo.GetNote(id)
	if err != nil {
		return ExportResult{Status: "error"}, err
	}
	markdown, err := export.ToMarkdown(note)
	if err != nil {
		return ExportResult{Status: "error"}, err
	}
	return a.saveWithDialog(export.SafeFilename(note.Title, ".md"), "Markdown Files (*.md)", "*.md",
		[]byte(markdown))
}

func (a *App) ExportNotePDF(id string) (ExportResult, error) {
	note, err := a.repo.GetNote(id)
	if err != nil {
		return ExportResult{Status: "error"}, err
	}
	pdfData, err := export.ToPDF(note)
	if err != nil {
		return ExportResult{Status: "error"}, err
	}
	return a.saveWithDialog(export.SafeFilename(note.Title, ".pdf"), "PDF Files (*.pdf)", "*.pdf", pdfData)
}

func (a *App) ExportAllNotesTXT() (ExportResult, error) {
	content := export.AllNotesTXT(a.repo.Notes())
	return a.saveWithDialog(export.AllNotesFilename(time.Now()), "Text Files (*.txt)", "*.txt",
		[]byte(content))
}

// ImportSummary reports what a batch import produced.
type ImportSummary struct {
	NotesImported   int      `json:"notesImported"`
	FoldersImported int      `json:"foldersImported"`
	Errors          []string `json:"errors,omitempty"`
}

// ImportFiles imports notes and folders from frontend-provided files. JSON
// files carry whole collections, Markdown and plain-text files become single
// notes; everything gets fresh ids so reimporting the same file never
// clobbers existing data. Files that fail to parse are reported in the
// summary without aborting the rest of the batch.
func (a *App) ImportFiles(files []export.ImportFile) ImportSummary {
	parsed := export.ParseImportFiles(files)
	notes, folders := a.repo.Import(parsed.Notes, parsed.Folders)
	if notes > 0 || folders > 0 {
		runtime.EventsEmit(a.ctx, "store:changed", "import")
	}
	return ImportSummary{
		NotesImported:   notes,
		FoldersImported: folders,
		Errors:          parsed.Errors,
	}
}

// CreateBackup creates a zip backup of the stored collections.
func (a *App) CreateBackup() (string, error) {
	return a.store.Backup()
}
