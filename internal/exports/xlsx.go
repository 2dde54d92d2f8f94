package exports

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/pestilab/internal/labels"
)

const xlsxSheet = "Labels"

// WriteXLSX writes rows to a single "Labels" sheet with a bold, frozen
// header row.
func WriteXLSX(w io.Writer, rows []labels.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return err
	}

	header := make([]any, len(FileHeader))
	for i, h := range FileHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F0F0F0"}},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "G1", bold); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := fields(r)
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return err
		}
	}

	widths := []float64{12, 14, 28, 14, 16, 18, 60}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(xlsxSheet, col, col, width); err != nil {
			return err
		}
	}

	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

// ReadRecords reads the first sheet of an XLSX workbook as records keyed by
// its header row. Headers are lower-cased with spaces replaced by
// underscores, so a sheet written by WriteXLSX maps back onto ExportRow.
func ReadRecords(r io.Reader) ([]labels.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidPayload)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyRows
	}

	keys := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		keys[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
	}

	records := make([]labels.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(labels.Record, len(keys))
		empty := true
		for i, v := range row {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			rec[keys[i]] = v
			if strings.TrimSpace(v) != "" {
				empty = false
			}
		}
		if !empty {
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return nil, ErrEmptyRows
	}
	return records, nil
}
