package exports

import (
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/JaimeStill/pestilab/internal/labels"
)

const (
	pdfLineHeight = 3.6
	pdfPadding    = 1.0
)

// Column widths in millimeters on landscape A4 with 10mm margins.
var pdfWidths = []float64{22, 28, 45, 25, 22, 30, 105}

// WritePDF writes rows as a table on landscape A4. Every chunk of
// chunkSize rows starts a new page with the title and header, and the
// header repeats on each page a chunk overflows onto.
func WritePDF(w io.Writer, rows []labels.ExportRow, title string, chunkSize int) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	pdf.SetTitle(title, true)
	pdf.SetCreator("PestiLab", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(labels.Transliterate(s)) }

	_, pageHeight := pdf.GetPageSize()
	left, _, _, bottom := pdf.GetMargins()
	limit := pageHeight - bottom

	header := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(240, 240, 240)
		for i, h := range TableHeader {
			pdf.CellFormat(pdfWidths[i], pdfLineHeight+2*pdfPadding, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 7)
	}

	for _, chunk := range Chunk(rows, chunkSize) {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, text(title), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		header()

		for _, r := range chunk {
			values := fields(r)
			cells := make([][]string, len(values))
			lines := 1
			for i, v := range values {
				cells[i] = pdf.SplitText(text(v), pdfWidths[i]-2*pdfPadding)
				lines = max(lines, len(cells[i]))
			}
			height := float64(lines)*pdfLineHeight + 2*pdfPadding

			if pdf.GetY()+height > limit {
				pdf.AddPage()
				header()
			}

			x, y := left, pdf.GetY()
			for i, cell := range cells {
				pdf.Rect(x, y, pdfWidths[i], height, "D")
				pdf.SetXY(x+pdfPadding, y+pdfPadding)
				for _, line := range cell {
					pdf.CellFormat(pdfWidths[i]-2*pdfPadding, pdfLineHeight, line, "", 2, "L", false, 0, "")
				}
				x += pdfWidths[i]
			}
			pdf.SetXY(left, y+height)
		}
	}

	return pdf.Output(w)
}
