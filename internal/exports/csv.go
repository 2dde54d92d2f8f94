package exports

import (
	"encoding/csv"
	"io"

	"github.com/JaimeStill/pestilab/internal/labels"
)

// WriteCSV writes a header line then one line per row. Values containing
// commas, quotes, or newlines are quoted.
func WriteCSV(w io.Writer, rows []labels.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FileHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(fields(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
