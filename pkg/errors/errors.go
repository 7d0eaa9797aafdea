package errors

import (
	"fmt"
	"log"
	"strings"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Authentication errors
	ErrTypeAuth ErrorType = "authentication"
	// Local storage errors
	ErrTypeStorage ErrorType = "storage"
	// Cloud sync errors
	ErrTypeSync ErrorType = "sync"
	// Configuration errors
	ErrTypeConfig ErrorType = "configuration"
	// Validation errors
	ErrTypeValidation ErrorType = "validation"
	// Export errors
	ErrTypeExport ErrorType = "export"
	// Generic application errors
	ErrTypeApp ErrorType = "application"
)

// AppError represents a structured application error
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	UserMessage string                 `json:"userMessage"`
	InternalErr error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.InternalErr != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.InternalErr)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the wrapped error for errors.Is/As chains
func (e *AppError) Unwrap() error {
	return e.InternalErr
}

// GetUserMessage returns a user-friendly error message
func (e *AppError) GetUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithUserMessage sets a user-friendly message
func (e *AppError) WithUserMessage(msg string) *AppError {
	e.UserMessage = msg
	return e
}

// Log logs the error with appropriate level
func (e *AppError) Log() {
	contextStr := ""
	if len(e.Context) > 0 {
		var parts []string
		for k, v := range e.Context {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		contextStr = fmt.Sprintf(" [%s]", strings.Join(parts, ", "))
	}

	log.Printf("ERROR [%s:%s] %s%s", e.Type, e.Code, e.Error(), contextStr)
}

// New creates a new AppError
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:        errType,
		Code:        code,
		Message:     message,
		InternalErr: err,
	}
}

// Predefined errors for common scenarios
var (
	// Authentication errors
	ErrNotAuthenticated = New(ErrTypeAuth, "NOT_AUTHENTICATED", "user not authenticated").
				WithUserMessage("Sign in to use cloud sync")

	ErrAuthUnavailable = New(ErrTypeAuth, "AUTH_UNAVAILABLE", "authentication not configured").
				WithUserMessage("Cloud features are not configured on this installation")

	ErrLoginCancelled = New(ErrTypeAuth, "LOGIN_CANCELLED", "login window was closed").
				WithUserMessage("Sign-in was cancelled")

	// Storage errors
	ErrNoteNotFound = New(ErrTypeStorage, "NOTE_NOT_FOUND", "note not found").
			WithUserMessage("The requested note could not be found")

	ErrFolderNotFound = New(ErrTypeStorage, "FOLDER_NOT_FOUND", "folder not found").
				WithUserMessage("The requested folder could not be found")

	ErrStoreCorrupted = New(ErrTypeStorage, "STORE_CORRUPTED", "stored data could not be parsed").
				WithUserMessage("Saved notes could not be read and were reset")

	ErrStoreWriteFailed = New(ErrTypeStorage, "STORE_WRITE_FAILED", "failed to write store").
				WithUserMessage("Unable to save. Check disk space and permissions")

	// Folder tree errors
	ErrFolderCycle = New(ErrTypeValidation, "FOLDER_CYCLE", "folder cannot be moved under its own descendant").
			WithUserMessage("A folder cannot be moved into one of its subfolders")

	// Sync errors
	ErrSyncFailed = New(ErrTypeSync, "SYNC_FAILED", "cloud sync failed").
			WithUserMessage("Sync failed. Your notes are safe locally")

	// Configuration errors
	ErrConfigLoadFailed = New(ErrTypeConfig, "CONFIG_LOAD_FAILED", "failed to load configuration").
				WithUserMessage("Settings could not be loaded. Using defaults")

	ErrConfigSaveFailed = New(ErrTypeConfig, "CONFIG_SAVE_FAILED", "failed to save configuration").
				WithUserMessage("Unable to save settings. Check permissions")

	// Export errors
	ErrExportCancelled = New(ErrTypeExport, "EXPORT_CANCELLED", "export cancelled by user").
				WithUserMessage("Export cancelled")

	ErrExportFailed = New(ErrTypeExport, "EXPORT_FAILED", "failed to export note").
			WithUserMessage("Unable to export the note. Please try again")
)
