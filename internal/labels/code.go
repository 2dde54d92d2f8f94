package labels

import (
	"fmt"
	"strings"
	"unicode"
)

var turkish = strings.NewReplacer(
	"İ", "I", "ı", "i",
	"Ğ", "G", "ğ", "g",
	"Ş", "S", "ş", "s",
	"Ç", "C", "ç", "c",
	"Ö", "O", "ö", "o",
	"Ü", "U", "ü", "u",
)

// Transliterate replaces Turkish letters with their closest ASCII letter.
func Transliterate(s string) string {
	return turkish.Replace(s)
}

// CodePrefix derives the three-letter code prefix for a compound: Turkish
// letters are transliterated, non-letters dropped, the first three letters
// upper-cased, and short names padded with X.
func CodePrefix(compoundName string) string {
	var b strings.Builder
	n := 0
	for _, r := range Transliterate(compoundName) {
		if !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if n++; n == 3 {
			break
		}
	}
	return b.String() + strings.Repeat("X", 3-n)
}

// Code formats a label code such as "ATR-0007".
func Code(compoundName string, serial int) string {
	return fmt.Sprintf("%s-%04d", CodePrefix(compoundName), serial)
}

// QRFields are the values packed into a label's QR payload.
type QRFields struct {
	Code          string `json:"label_code"`
	Name          string `json:"compound_name"`
	CAS           string `json:"cas"`
	Concentration string `json:"concentration"`
	Unit          string `json:"unit"`
	Date          string `json:"date"`
	PreparedBy    string `json:"prepared_by"`
}

// QRPayload renders the pipe-delimited payload:
// LBL|code=..|name=..|cas=..|c=<conc> <unit>|dt=..|by=..
func QRPayload(f QRFields) string {
	conc := strings.TrimSpace(f.Concentration + " " + f.Unit)
	return fmt.Sprintf(
		"LBL|code=%s|name=%s|cas=%s|c=%s|dt=%s|by=%s",
		f.Code, f.Name, f.CAS, conc, f.Date, f.PreparedBy,
	)
}
