package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer lays rows out as a landscape table.
type PDFRenderer struct{}

// NewPDFRenderer constructs a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

var pdfColumnWidths = []float64{24, 16, 16, 24, 60, 16, 50, 30, 41}

// Render creates a PDF document with a title line and one row per slot.
func (r *PDFRenderer) Render(sheet Sheet) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if sheet.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(sheet.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range slotHeaders {
		pdf.CellFormat(pdfColumnWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	previousDay := ""
	for _, row := range sheet.Rows {
		values := row.values()
		if row.Day == previousDay {
			values[0] = ""
		}
		previousDay = row.Day
		for i, value := range values {
			pdf.CellFormat(pdfColumnWidths[i], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
