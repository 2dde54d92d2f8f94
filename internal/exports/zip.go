package exports

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"

	"github.com/JaimeStill/pestilab/internal/labels"
)

var nonWord = regexp.MustCompile(`[^\w\-]+`)

// EntryName is the per-row text file name: the sanitized label code, or
// LABEL_<n> when the row has none.
func EntryName(r labels.ExportRow, index int) string {
	name := r.LabelCode
	if name == "" {
		name = fmt.Sprintf("LABEL_%d", index+1)
	}
	return nonWord.ReplaceAllString(name, "_") + ".txt"
}

func entryText(r labels.ExportRow) string {
	return fmt.Sprintf(
		"DATE: %s\nLABEL CODE: %s\nCOMPOUND: %s\nCAS: %s\nCONCENTRATION: %s\nPREPARED BY: %s\nQR DATA: %s",
		r.Date, r.LabelCode, r.Compound, r.CAS, r.Concentration, r.PreparedBy, r.QRData,
	)
}

// WriteZIP writes labels.csv plus one text file per row. Rows whose names
// collide keep the first entry's position and the last row's text.
func WriteZIP(w io.Writer, rows []labels.ExportRow) error {
	var csvBuf bytes.Buffer
	if err := WriteCSV(&csvBuf, rows); err != nil {
		return err
	}

	var order []string
	texts := make(map[string]string, len(rows))
	for i, r := range rows {
		name := EntryName(r, i)
		if _, seen := texts[name]; !seen {
			order = append(order, name)
		}
		texts[name] = entryText(r)
	}

	zw := zip.NewWriter(w)
	if err := writeEntry(zw, "labels.csv", csvBuf.Bytes()); err != nil {
		return err
	}
	for _, name := range order {
		if err := writeEntry(zw, name, []byte(texts[name])); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}
	_, err = f.Write(data)
	return err
}
