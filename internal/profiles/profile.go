// Package profiles holds the catalog of printer and sheet geometries labels
// are rendered for, and the persisted choice of which one is in use.
package profiles

import "fmt"

// Insets are margins in millimeters.
type Insets struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform returns equal insets on every side.
func Uniform(mm float64) Insets {
	return Insets{Top: mm, Right: mm, Bottom: mm, Left: mm}
}

// Size is a width and height in millimeters.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Grid arranges identical cells on a sheet.
type Grid struct {
	Rows    int     `json:"rows"`
	Cols    int     `json:"cols"`
	GutterX float64 `json:"gutter_x"`
	GutterY float64 `json:"gutter_y"`
}

// Cells is the number of labels on one sheet.
func (g Grid) Cells() int {
	return g.Rows * g.Cols
}

// Sheet describes a multi-label page. Cells have no margin of their own.
type Sheet struct {
	Page  Size `json:"page"`
	Grid  Grid `json:"grid"`
	Label Size `json:"label"`
}

// Profile is a named label geometry with its print density. Profiles are
// read-only catalog data.
type Profile struct {
	ID            string  `json:"id"`
	DisplayName   string  `json:"display_name"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Margin        Insets  `json:"margin"`
	Sheet         *Sheet  `json:"sheet,omitempty"`
	Density       int     `json:"density"`
	Scale         float64 `json:"scale"`
	FontFamily    string  `json:"font_family"`
	QRSize        float64 `json:"qr_size"`
	QRLevel       string  `json:"qr_level"`
	BarcodeHeight float64 `json:"barcode_height"`
	BarcodeFormat string  `json:"barcode_format"`
	ShowBorders   bool    `json:"show_borders"`
}

// IsSheet reports whether p lays out a grid of labels on a page.
func (p Profile) IsSheet() bool {
	return p.Sheet != nil && p.Sheet.Grid.Cells() > 0
}

// PaperSize is the physical media size the operator loads.
func (p Profile) PaperSize() Size {
	if p.Sheet != nil {
		return p.Sheet.Page
	}
	return Size{Width: p.Width, Height: p.Height}
}

func (p Profile) clone() Profile {
	if p.Sheet != nil {
		s := *p.Sheet
		p.Sheet = &s
	}
	return p
}

// PrintInstructions are the printer dialog settings an operator must apply
// by hand for output to match the profile's physical size.
type PrintInstructions struct {
	PaperSize string   `json:"paper_size"`
	Density   int      `json:"density"`
	Scaling   string   `json:"scaling"`
	FitToPage bool     `json:"fit_to_page"`
	Margins   string   `json:"margins"`
	Notes     []string `json:"notes"`
}

// Instructions returns the manual print settings for p.
func (p Profile) Instructions() PrintInstructions {
	paper := p.PaperSize()
	pi := PrintInstructions{
		PaperSize: fmt.Sprintf("%g×%g mm", paper.Width, paper.Height),
		Density:   p.Density,
		Scaling:   "100%",
		FitToPage: false,
		Margins:   "0",
		Notes: []string{
			"Set scaling to 100% (actual size).",
			"Turn fit-to-page off.",
			"Set printer margins to none.",
		},
	}
	if p.Scale != 1 {
		pi.Notes = append(pi.Notes, fmt.Sprintf("Output is pre-scaled by %g for printer calibration.", p.Scale))
	}
	return pi
}
