// Package export renders notes to the supported file formats: plain text,
// Markdown and PDF.
package export

import (
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"quill/pkg/errors"
	"quill/pkg/models"
	"quill/pkg/search"
)

const dateLayout = "2006-01-02"

// SafeFilename lowercases a note title and squashes everything outside
// [a-z0-9] to underscores, then appends the extension.
func SafeFilename(title, ext string) string {
	if title == "" {
		title = "Untitled Note"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + ext
}

func titleOf(note models.Note) string {
	if note.Title == "" {
		return "Untitled Note"
	}
	return note.Title
}

func bodyOf(note models.Note) string {
	if note.Content == "" {
		return "No content"
	}
	return search.ExtractText(note.Content)
}

// ToTXT renders a note as plain text: title, underline, metadata header and
// the body stripped of markup.
func ToTXT(note models.Note) string {
	title := titleOf(note)

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
	b.WriteString("Created: " + note.CreatedAt.Format(dateLayout) + "\n")
	b.WriteString("Updated: " + note.UpdatedAt.Format(dateLayout) + "\n")
	if note.Category != "" {
		b.WriteString("Category: " + note.Category + "\n")
	}
	b.WriteString("\n" + bodyOf(note))
	return b.String()
}

// AllNotesTXT renders every note into one numbered plain-text document.
func AllNotesTXT(notes []models.Note) string {
	var b strings.Builder
	b.WriteString("All Notes Export\n")
	b.WriteString("================\n\n")

	for i, note := range notes {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, titleOf(note)))
		b.WriteString("Created: " + note.CreatedAt.Format(dateLayout) + "\n")
		if note.Category != "" {
			b.WriteString("Category: " + note.Category + "\n")
		}
		b.WriteString(strings.Repeat("-", 50) + "\n")
		b.WriteString(bodyOf(note) + "\n\n")
		b.WriteString(strings.Repeat("=", 50) + "\n\n")
	}
	return b.String()
}

// AllNotesFilename names the combined export after the current date.
func AllNotesFilename(now time.Time) string {
	return "all_notes_" + now.Format(dateLayout) + ".txt"
}

// ToMarkdown converts a note's rich text content to Markdown under a level-1
// title header.
func ToMarkdown(note models.Note) (string, error) {
	converter := md.NewConverter("", true, nil)
	body, err := converter.ConvertString(note.Content)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeExport, "MARKDOWN_CONVERT_FAILED",
			"failed to convert note to markdown")
	}

	var b strings.Builder
	b.WriteString("# " + titleOf(note) + "\n\n")
	if note.Category != "" {
		b.WriteString("*Category: " + note.Category + "*\n\n")
	}
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}
