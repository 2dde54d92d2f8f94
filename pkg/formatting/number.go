package formatting

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Missing is rendered in place of absent values.
const Missing = "-"

// DefaultDigits is the precision used for concentrations and volumes.
const DefaultDigits = 3

// FormatNumber renders value for display. Nil and empty strings render as
// Missing, non-numeric strings pass through unchanged, integers render
// without a decimal point, and other numbers are fixed to digits decimals
// with trailing zeros and a trailing point removed. No grouping separators
// are ever emitted.
func FormatNumber(value any, digits int) string {
	switch v := value.(type) {
	case nil:
		return Missing
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return Missing
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return v
		}
		return formatFloat(f, digits)
	case json.Number:
		return FormatNumber(string(v), digits)
	case float64:
		return formatFloat(v, digits)
	case float32:
		return formatFloat(float64(v), digits)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case *float64:
		if v == nil {
			return Missing
		}
		return formatFloat(*v, digits)
	default:
		return fmt.Sprint(v)
	}
}

// FormatFixed renders v with exactly digits decimals.
func FormatFixed(v float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	return trimNegativeZero(strconv.FormatFloat(v, 'f', digits, 64))
}

func formatFloat(f float64, digits int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if f == math.Trunc(f) {
		return trimNegativeZero(strconv.FormatFloat(f, 'f', -1, 64))
	}

	s := FormatFixed(f, digits)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return trimNegativeZero(s)
}

func trimNegativeZero(s string) string {
	if s == "-0" {
		return "0"
	}
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		return s[1:]
	}
	return s
}
