// Package exports turns label export rows into downloadable PDF, Word, ZIP,
// CSV, and XLSX files, and keeps an optional archive of generated files in
// blob storage.
package exports

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/pestilab/internal/labels"
)

// Format is an export file type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatWord Format = "docx"
	FormatZIP  Format = "zip"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatPDF, FormatWord, FormatZIP, FormatCSV, FormatXLSX}

// ParseFormat accepts a format name or extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatWord, nil
	case "zip":
		return FormatZIP, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatWord:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatZIP:
		return "application/zip"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// FileName builds "<subject>_<date>.<ext>".
func FileName(subject, date string, f Format) string {
	return fmt.Sprintf("%s_%s.%s", subject, date, f)
}

// Artifact is one generated export file.
type Artifact struct {
	Format      Format `json:"format"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Rows        int    `json:"rows"`
	Sections    int    `json:"sections,omitempty"`
	Pages       *int   `json:"pages,omitempty"`
	Data        []byte `json:"-"`
}

// Column headers. Tables use the short concentration heading.
var (
	FileHeader  = []string{"DATE", "LABEL CODE", "COMPOUND", "CAS", "CONCENTRATION", "PREPARED BY", "QR DATA"}
	TableHeader = []string{"DATE", "LABEL CODE", "COMPOUND", "CAS", "CONC.", "PREPARED BY", "QR DATA"}
)

func fields(r labels.ExportRow) []string {
	return []string{r.Date, r.LabelCode, r.Compound, r.CAS, r.Concentration, r.PreparedBy, r.QRData}
}

// Chunk splits rows into consecutive slices of at most size rows.
func Chunk(rows []labels.ExportRow, size int) [][]labels.ExportRow {
	if size < 1 {
		size = len(rows)
	}
	var out [][]labels.ExportRow
	for start := 0; start < len(rows); start += size {
		out = append(out, rows[start:min(start+size, len(rows))])
	}
	return out
}
