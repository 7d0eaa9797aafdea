package errors

import (
	"strings"
)

// ValidationResult holds validation results
type ValidationResult struct {
	IsValid bool
	Errors  []*AppError
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(err *AppError) {
	vr.IsValid = false
	vr.Errors = append(vr.Errors, err)
}

// GetFirstError returns the first error or nil
func (vr *ValidationResult) GetFirstError() *AppError {
	if len(vr.Errors) > 0 {
		return vr.Errors[0]
	}
	return nil
}

// Validator provides validation utilities
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateEntityID validates a note or folder ID
func (v *Validator) ValidateEntityID(id string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(id) == "" {
		result.AddError(New(ErrTypeValidation, "ID_EMPTY", "entity ID cannot be empty").
			WithUserMessage("An ID is required"))
	}

	return result
}

// ValidateFolderName validates a folder name
func (v *Validator) ValidateFolderName(name string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(name) == "" {
		result.AddError(New(ErrTypeValidation, "FOLDER_NAME_EMPTY", "folder name cannot be empty").
			WithUserMessage("Folder name cannot be empty"))
	}

	return result
}

// ValidateNoteContent validates note content
func (v *Validator) ValidateNoteContent(content string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	// Empty content is allowed; only reject extremely large notes (> 1MB)
	if len(content) > 1024*1024 {
		result.AddError(New(ErrTypeValidation, "CONTENT_TOO_LARGE", "note content too large").
			WithUserMessage("Note content is too large. Maximum size is 1MB").
			WithContext("size", len(content)))
	}

	return result
}
