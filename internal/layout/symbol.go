package layout

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/qr"
	"github.com/boombuler/barcode/twooffive"
)

// Kind identifies a symbol type.
type Kind string

const (
	KindBarcode Kind = "barcode"
	KindQR      Kind = "qr"
)

// Symbol is the outcome of encoding one barcode or QR code. A failed symbol
// carries the reason and no image; the label renders without it.
type Symbol struct {
	Kind    Kind   `json:"kind"`
	Format  string `json:"format"`
	Value   string `json:"value"`
	Width   int    `json:"width_px,omitempty"`
	Height  int    `json:"height_px,omitempty"`
	PNG     []byte `json:"png,omitempty"`
	Failure string `json:"failure,omitempty"`
	err     error
}

// OK reports whether the symbol encoded.
func (s Symbol) OK() bool {
	return s.err == nil && len(s.PNG) > 0
}

// Err returns the encoding failure, if any.
func (s Symbol) Err() error {
	return s.err
}

func failed(s Symbol, err error) Symbol {
	s.err = err
	s.Failure = err.Error()
	return s
}

// EncodeBarcode encodes value as a one-dimensional barcode in format, one
// pixel per module and heightPx tall.
func EncodeBarcode(value, format string, heightPx int) Symbol {
	s := Symbol{Kind: KindBarcode, Format: strings.ToUpper(format), Value: value}
	if value == "" {
		return failed(s, ErrEmptyValue)
	}
	if heightPx < 1 {
		return failed(s, fmt.Errorf("%w: barcode height %d", ErrSymbolSize, heightPx))
	}

	bc, err := encode1D(value, s.Format)
	if err != nil {
		return failed(s, err)
	}

	scaled, err := barcode.Scale(bc, bc.Bounds().Dx(), heightPx)
	if err != nil {
		return failed(s, fmt.Errorf("%w: %v", ErrSymbolSize, err))
	}
	return rasterize(s, scaled)
}

// EncodeQR encodes value as a square QR code of sizePx at error correction
// level.
func EncodeQR(value, level string, sizePx int) Symbol {
	s := Symbol{Kind: KindQR, Format: "QR-" + strings.ToUpper(level), Value: value}
	if value == "" {
		return failed(s, ErrEmptyValue)
	}

	ecc, err := qrLevel(level)
	if err != nil {
		return failed(s, err)
	}

	code, err := qr.Encode(value, ecc, qr.Auto)
	if err != nil {
		return failed(s, err)
	}

	scaled, err := barcode.Scale(code, sizePx, sizePx)
	if err != nil {
		return failed(s, fmt.Errorf("%w: %v", ErrSymbolSize, err))
	}
	return rasterize(s, scaled)
}

func encode1D(value, format string) (barcode.Barcode, error) {
	switch format {
	case "", "CODE128":
		return code128.Encode(value)
	case "CODE39":
		return code39.Encode(value, false, true)
	case "CODE93":
		return code93.Encode(value, false, true)
	case "EAN13", "EAN8":
		return ean.Encode(value)
	case "CODABAR":
		return codabar.Encode(value)
	case "ITF":
		return twooffive.Encode(value, true)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func qrLevel(level string) (qr.ErrorCorrectionLevel, error) {
	switch strings.ToUpper(level) {
	case "L":
		return qr.L, nil
	case "", "M":
		return qr.M, nil
	case "Q":
		return qr.Q, nil
	case "H":
		return qr.H, nil
	default:
		return qr.M, fmt.Errorf("%w: QR level %q", ErrUnsupportedFormat, level)
	}
}

func rasterize(s Symbol, img barcode.Barcode) Symbol {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return failed(s, fmt.Errorf("rasterize symbol: %w", err))
	}
	b := img.Bounds()
	s.Width = b.Dx()
	s.Height = b.Dy()
	s.PNG = buf.Bytes()
	return s
}
