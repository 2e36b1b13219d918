package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin          = 10.0
	landscapeAfterCols = 6
	minColumnWidth     = 14.0
)

// PDFExporter renders datasets into a paged table. Wide datasets switch to
// landscape and the header row repeats on every page.
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render creates a PDF document with an optional title, the table body and a
// footer carrying the page number and generation date.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}

	orientation := "P"
	if len(data.Headers) > landscapeAfterCols {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pdfMargin, 15, pdfMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")

	pageWidth, _ := pdf.GetPageSize()
	widths := columnWidths(data, pageWidth-2*pdfMargin)
	generated := e.now().UTC().Format("2006-01-02 15:04 MST")

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	first := true
	pdf.SetHeaderFunc(func() {
		if first {
			first = false
			return
		}
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat((pageWidth-2*pdfMargin)/2, 6, fmt.Sprintf("Generated %s", generated), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}
	header()

	for _, row := range data.Rows {
		for i, cell := range data.record(row) {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(data.Totals) > 0 {
		pdf.SetFont("Arial", "B", 9)
		for i, cell := range data.record(data.Totals) {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths shares usable proportionally to the longest cell of each
// column, never going below minColumnWidth.
func columnWidths(data Dataset, usable float64) []float64 {
	lengths := make([]float64, len(data.Headers))
	for i, h := range data.Headers {
		lengths[i] = float64(utf8.RuneCountInString(h))
	}
	for _, row := range data.Rows {
		for i, cell := range data.record(row) {
			if n := float64(utf8.RuneCountInString(cell)); n > lengths[i] {
				lengths[i] = n
			}
		}
	}

	var total float64
	for i := range lengths {
		if lengths[i] < 1 {
			lengths[i] = 1
		}
		total += lengths[i]
	}

	widths := make([]float64, len(lengths))
	var fixed, flexible float64
	for i, n := range lengths {
		widths[i] = usable * n / total
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
			fixed += minColumnWidth
		} else {
			flexible += widths[i]
		}
	}
	if flexible > 0 && fixed+flexible > usable {
		scale := (usable - fixed) / flexible
		for i := range widths {
			if widths[i] > minColumnWidth {
				widths[i] *= scale
			}
		}
	}
	return widths
}
