// Package labels normalizes heterogeneous preparation records into the
// canonical label fields, generates label codes and QR payloads, and holds
// the label preview state.
package labels

// Data is the canonical content of one printed label.
type Data struct {
	LabelCode    string `json:"label_code"`
	CompoundName string `json:"compound_name"`
	CAS          string `json:"cas"`
	ActualConc   string `json:"actual_conc"`
	RequiredVol  string `json:"required_vol"`
	PreparedBy   string `json:"prepared_by"`
	Date         string `json:"date"`
}

// ExportRow is the flattened shape consumed by bulk exports.
type ExportRow struct {
	Date          string `json:"date"`
	LabelCode     string `json:"label_code"`
	Compound      string `json:"compound"`
	CAS           string `json:"cas"`
	Concentration string `json:"concentration"`
	PreparedBy    string `json:"prepared_by"`
	QRData        string `json:"qr_data"`
}

// Record is a preparation record as delivered by any upstream source.
type Record map[string]any
