package labels

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Rule maps the first non-empty candidate field of a record onto one
// canonical field. Candidates may use dots to reach into nested objects.
type Rule struct {
	Field      string
	Candidates []string
}

// LabelRules resolve Data fields. New upstream shapes are accommodated by
// extending these lists.
var LabelRules = []Rule{
	{Field: "label_code", Candidates: []string{"code", "labelCode", "label_code"}},
	{Field: "compound_name", Candidates: []string{"compound_name", "compoundName", "compound.name", "compound"}},
	{Field: "cas", Candidates: []string{"cas", "cas_number", "casNo", "compound.cas_number", "compound.cas"}},
	{Field: "actual_conc", Candidates: []string{"actual_conc", "actualConc", "actual_concentration", "concentration_ppm", "concentration", "conc"}},
	{Field: "required_vol", Candidates: []string{"required_vol", "requiredVol", "required_volume", "required_volume_ml"}},
	{Field: "prepared_by", Candidates: []string{"preparedBy", "prepared_by", "user", "operator"}},
	{Field: "date", Candidates: []string{"date", "createdAt", "created_at"}},
}

// ExportRules resolve ExportRow fields.
var ExportRules = []Rule{
	{Field: "date", Candidates: []string{"date", "createdAt"}},
	{Field: "label_code", Candidates: []string{"code", "labelCode", "label_code"}},
	{Field: "compound", Candidates: []string{"compound.name", "compound", "compound_name"}},
	{Field: "cas", Candidates: []string{"cas", "cas_number", "casNo"}},
	{Field: "concentration", Candidates: []string{"concentration_ppm", "concentration", "conc"}},
	{Field: "prepared_by", Candidates: []string{"preparedBy", "user", "operator", "prepared_by"}},
	{Field: "qr_data", Candidates: []string{"qr", "qr_data", "qrText"}},
}

// Mapper is the single place where upstream record shapes are reconciled
// with Data and ExportRow.
type Mapper struct {
	location *time.Location
	now      func() time.Time
}

// NewMapper creates a Mapper that computes "today" in location.
func NewMapper(location *time.Location) *Mapper {
	if location == nil {
		location = time.UTC
	}
	return &Mapper{location: location, now: time.Now}
}

// WithClock returns a copy of m that reads the current time from now.
func (m *Mapper) WithClock(now func() time.Time) *Mapper {
	c := *m
	c.now = now
	return &c
}

// Today returns the current date as YYYY-MM-DD.
func (m *Mapper) Today() string {
	return m.now().In(m.location).Format(time.DateOnly)
}

// Location returns the timezone used for dates.
func (m *Mapper) Location() *time.Location {
	return m.location
}

// ToLabelData normalizes rec. Missing fields are empty; a missing date is
// today.
func (m *Mapper) ToLabelData(rec Record) Data {
	f := resolve(rec, LabelRules)
	return Data{
		LabelCode:    f["label_code"],
		CompoundName: f["compound_name"],
		CAS:          f["cas"],
		ActualConc:   f["actual_conc"],
		RequiredVol:  f["required_vol"],
		PreparedBy:   f["prepared_by"],
		Date:         m.date(f["date"]),
	}
}

// ToExportRow flattens rec for export. Dates are left as found and an absent
// date stays empty. Records with a code but no QR text get a generated
// payload.
func (m *Mapper) ToExportRow(rec Record) ExportRow {
	f := resolve(rec, ExportRules)
	row := ExportRow{
		Date:          f["date"],
		LabelCode:     f["label_code"],
		Compound:      f["compound"],
		CAS:           f["cas"],
		Concentration: f["concentration"],
		PreparedBy:    f["prepared_by"],
		QRData:        f["qr_data"],
	}
	if row.QRData == "" && row.LabelCode != "" {
		row.QRData = QRPayload(QRFields{
			Code:          row.LabelCode,
			Name:          row.Compound,
			CAS:           row.CAS,
			Concentration: row.Concentration,
			Unit:          "ppm",
			Date:          row.Date,
			PreparedBy:    row.PreparedBy,
		})
	}
	return row
}

// ExportRowFromData flattens an already-normalized label.
func ExportRowFromData(d Data) ExportRow {
	return ExportRow{
		Date:          d.Date,
		LabelCode:     d.LabelCode,
		Compound:      d.CompoundName,
		CAS:           d.CAS,
		Concentration: d.ActualConc,
		PreparedBy:    d.PreparedBy,
		QRData: QRPayload(QRFields{
			Code:          d.LabelCode,
			Name:          d.CompoundName,
			CAS:           d.CAS,
			Concentration: d.ActualConc,
			Unit:          "ppm",
			Date:          d.Date,
			PreparedBy:    d.PreparedBy,
		}),
	}
}

// date reduces a timestamp to its calendar date in m's location.
func (m *Mapper) date(v string) string {
	if v == "" {
		return m.Today()
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.In(m.location).Format(time.DateOnly)
	}
	if len(v) > len(time.DateOnly) {
		if _, err := time.Parse(time.DateOnly, v[:len(time.DateOnly)]); err == nil {
			return v[:len(time.DateOnly)]
		}
	}
	return v
}

func resolve(rec Record, rules []Rule) map[string]string {
	out := make(map[string]string, len(rules))
	for _, rule := range rules {
		for _, path := range rule.Candidates {
			if v, ok := lookup(rec, path); ok {
				out[rule.Field] = v
				break
			}
		}
	}
	return out
}

// lookup returns the scalar at path as a string, reporting false for
// absent, empty, or non-scalar values.
func lookup(rec Record, path string) (string, bool) {
	var cur any = map[string]any(rec)
	for key := range strings.SplitSeq(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			if r, isRec := cur.(Record); isRec {
				obj = r
			} else {
				return "", false
			}
		}
		if cur, ok = obj[key]; !ok {
			return "", false
		}
	}
	return scalar(cur)
}

func scalar(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		return "", false
	}
	return s, s != ""
}
