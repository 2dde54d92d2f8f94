package weighing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNumeric parses a number typed by an operator. Surrounding spaces are
// ignored and a decimal comma is accepted. Empty, non-numeric, and
// non-finite input reports false.
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseMode resolves a mode name or one of its aliases.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mass_per_volume", "mg/l", "w/v", "ppm_wv":
		return MassPerVolume, true
	case "mass_per_mass", "mg/kg", "w/w", "ppm_ww":
		return MassPerMass, true
	}
	return "", false
}

var massFactors = map[string]float64{
	"":   1,
	"mg": 1,
	"g":  1000,
	"kg": 1_000_000,
	"µg": 0.001,
	"μg": 0.001,
	"ug": 0.001,
}

var volumeFactors = map[string]float64{
	"":   1,
	"ml": 1,
	"l":  1000,
	"µl": 0.001,
	"μl": 0.001,
	"ul": 0.001,
}

// ToMilligrams converts a mass in unit to milligrams.
func ToMilligrams(value float64, unit string) (float64, error) {
	f, ok := massFactors[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return value * f, nil
}

// ToMilliliters converts a volume in unit to milliliters.
func ToMilliliters(value float64, unit string) (float64, error) {
	f, ok := volumeFactors[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return value * f, nil
}

// Numeric is a form value that may arrive as a JSON number or a string.
// The raw text is kept so an incomplete entry can be echoed back.
type Numeric struct {
	raw string
	set bool
}

// NewNumeric wraps a number.
func NewNumeric(v float64) Numeric {
	return Numeric{raw: strconv.FormatFloat(v, 'f', -1, 64), set: true}
}

// Text wraps raw operator input.
func Text(s string) Numeric {
	return Numeric{raw: s, set: true}
}

// IsSet reports whether the value was present in the payload.
func (n Numeric) IsSet() bool { return n.set }

// Float parses the value with ParseNumeric.
func (n Numeric) Float() (float64, bool) {
	if !n.set {
		return 0, false
	}
	return ParseNumeric(n.raw)
}

// UnmarshalJSON accepts a JSON number or a string holding raw operator
// input. null leaves n unset.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Numeric{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric{raw: s, set: true}
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeric field: %w", err)
	}
	*n = Numeric{raw: num.String(), set: true}
	return nil
}

// MarshalJSON writes a parsable value as a number and anything else as the
// raw string. Unset values are null.
func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	if f, ok := n.Float(); ok {
		return json.Marshal(f)
	}
	return json.Marshal(n.raw)
}
