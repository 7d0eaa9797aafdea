package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"quill/pkg/errors"
	"quill/pkg/models"
)

// ToPDF renders a note as a PDF document: bold title, gray metadata lines
// and the wrapped body with automatic page breaks.
func ToPDF(note models.Note) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, titleOf(note), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, "Created: "+note.CreatedAt.Format(dateLayout), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Updated: "+note.UpdatedAt.Format(dateLayout), "", 1, "L", false, 0, "")
	if note.Category != "" {
		pdf.CellFormat(0, 5, "Category: "+note.Category, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, bodyOf(note), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeExport, "PDF_RENDER_FAILED",
			"failed to render note as PDF")
	}
	return buf.Bytes(), nil
}
