package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/pkg/models"
)

func sampleNote() models.Note {
	return models.Note{
		ID:        "n1",
		Title:     "Meeting Notes",
		Content:   "<p>Discussed the <b>roadmap</b>.</p><p>Next steps pending.</p>",
		Category:  "work",
		CreatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 3, 12, 17, 30, 0, 0, time.UTC),
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"Meeting Notes", ".txt", "meeting_notes.txt"},
		{"Q3/Q4 Plan!", ".md", "q3_q4_plan_.md"},
		{"", ".pdf", "untitled_note.pdf"},
		{"2025", ".txt", "2025.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeFilename(tt.title, tt.ext))
	}
}

func TestToTXT(t *testing.T) {
	out := ToTXT(sampleNote())

	require.True(t, strings.HasPrefix(out, "Meeting Notes\n=============\n\n"))
	assert.Contains(t, out, "Created: 2025-03-10")
	assert.Contains(t, out, "Updated: 2025-03-12")
	assert.Contains(t, out, "Category: work")
	assert.Contains(t, out, "Discussed the roadmap.")
	assert.NotContains(t, out, "<p>")
}

func TestToTXT_EmptyNote(t *testing.T) {
	out := ToTXT(models.Note{CreatedAt: time.Now(), UpdatedAt: time.Now()})

	assert.Contains(t, out, "Untitled Note")
	assert.Contains(t, out, "No content")
	assert.NotContains(t, out, "Category:")
}

func TestAllNotesTXT(t *testing.T) {
	second := sampleNote()
	second.ID = "n2"
	second.Title = "Second"
	second.Category = ""

	out := AllNotesTXT([]models.Note{sampleNote(), second})

	require.True(t, strings.HasPrefix(out, "All Notes Export\n================\n\n"))
	assert.Contains(t, out, "1. Meeting Notes")
	assert.Contains(t, out, "2. Second")
	assert.Contains(t, out, strings.Repeat("-", 50))
	assert.Contains(t, out, strings.Repeat("=", 50))
}

func TestAllNotesFilename(t *testing.T) {
	now := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "all_notes_2025-03-12.txt", AllNotesFilename(now))
}

func TestToMarkdown(t *testing.T) {
	out, err := ToMarkdown(sampleNote())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, "# Meeting Notes\n\n"))
	assert.Contains(t, out, "*Category: work*")
	assert.Contains(t, out, "**roadmap**")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestToPDF(t *testing.T) {
	data, err := ToPDF(sampleNote())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}
