// Package layout turns label data and a profile into physically sized
// cards, single or on a sheet grid, with their barcode and QR symbols.
package layout

import (
	"log/slog"
	"regexp"

	"github.com/JaimeStill/pestilab/internal/labels"
	"github.com/JaimeStill/pestilab/internal/profiles"
	"github.com/JaimeStill/pestilab/pkg/formatting"
)

// Lines is the text printed on a card.
type Lines struct {
	Name    string `json:"name"`
	Details string `json:"details"`
	Prep    string `json:"prep"`
	Code    string `json:"code"`
}

// Card is one label. X and Y place it on its sheet, in millimeters.
type Card struct {
	Row      int             `json:"row"`
	Col      int             `json:"col"`
	X        float64         `json:"x_mm"`
	Y        float64         `json:"y_mm"`
	Width    float64         `json:"width_mm"`
	Height   float64         `json:"height_mm"`
	Margin   profiles.Insets `json:"margin_mm"`
	WidthPx  int             `json:"width_px"`
	HeightPx int             `json:"height_px"`
	Data     labels.Data     `json:"data"`
	Lines    Lines           `json:"lines"`
	QR       Symbol          `json:"qr"`
	Barcode  Symbol          `json:"barcode"`
}

// Layout is a rendered page: one card, or a grid of identical cards.
type Layout struct {
	ProfileID   string          `json:"profile_id"`
	Sheet       bool            `json:"sheet"`
	Density     int             `json:"density"`
	Scale       float64         `json:"scale"`
	FontFamily  string          `json:"font_family"`
	ShowBorders bool            `json:"show_borders"`
	QRSize      float64         `json:"qr_size_mm"`
	BarHeight   float64         `json:"barcode_height_mm"`
	Page        profiles.Size   `json:"page_mm"`
	Margin      profiles.Insets `json:"margin_mm"`
	Grid        profiles.Grid   `json:"grid"`
	Cards       []Card          `json:"cards"`
}

// Engine renders layouts.
type Engine struct {
	metrics *Metrics
	logger  *slog.Logger
}

func NewEngine(metrics *Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		metrics: metrics,
		logger:  logger.With("system", "layout"),
	}
}

// Render lays out data for p. Symbol failures are recorded on the card and
// never fail the render.
func (e *Engine) Render(data labels.Data, p profiles.Profile) Layout {
	out := Layout{
		ProfileID:   p.ID,
		Sheet:       p.IsSheet(),
		Density:     p.Density,
		Scale:       p.Scale,
		FontFamily:  p.FontFamily,
		ShowBorders: p.ShowBorders,
		QRSize:      p.QRSize,
		BarHeight:   p.BarcodeHeight,
		Page:        p.PaperSize(),
	}

	if !out.Sheet {
		card := e.card(data, p, p.Width, p.Height, p.Margin)
		out.Cards = []Card{card}
		e.metrics.rendered("card")
		return out
	}

	s := p.Sheet
	out.Margin = p.Margin
	out.Grid = s.Grid

	proto := e.card(data, p, s.Label.Width, s.Label.Height, profiles.Insets{})
	out.Cards = make([]Card, 0, s.Grid.Cells())
	for row := range s.Grid.Rows {
		for col := range s.Grid.Cols {
			c := proto
			c.Row = row
			c.Col = col
			c.X = p.Margin.Left + float64(col)*(s.Label.Width+s.Grid.GutterX)
			c.Y = p.Margin.Top + float64(row)*(s.Label.Height+s.Grid.GutterY)
			out.Cards = append(out.Cards, c)
		}
	}

	e.metrics.rendered("sheet")
	return out
}

func (e *Engine) card(data labels.Data, p profiles.Profile, w, h float64, margin profiles.Insets) Card {
	px := func(mm float64) int { return MMToPixels(mm, p.Density, p.Scale) }

	c := Card{
		Width:    w,
		Height:   h,
		Margin:   margin,
		WidthPx:  px(w),
		HeightPx: px(h),
		Data:     data,
		Lines:    TextLines(data),
		QR:       EncodeQR(orMissing(data.LabelCode), p.QRLevel, px(p.QRSize)),
		Barcode:  EncodeBarcode(data.LabelCode, p.BarcodeFormat, px(p.BarcodeHeight)),
	}

	for _, s := range []Symbol{c.QR, c.Barcode} {
		if s.OK() {
			continue
		}
		e.metrics.failed(s.Kind)
		e.logger.Warn("symbol encoding failed, rendering without it",
			"kind", s.Kind,
			"format", s.Format,
			"value", s.Value,
			"error", s.Err(),
		)
	}

	return c
}

var ppmSuffix = regexp.MustCompile(`(?i)\s*ppm`)

// TextLines builds the printed text of a card. Missing values show as "-"
// and the concentration is display-formatted.
func TextLines(d labels.Data) Lines {
	conc := formatting.FormatNumber(ppmSuffix.ReplaceAllString(d.ActualConc, ""), formatting.DefaultDigits)
	return Lines{
		Name:    orMissing(d.CompoundName),
		Details: "CAS: " + orMissing(d.CAS) + " • Conc.: " + conc + " ppm",
		Prep:    "Date: " + orMissing(d.Date) + " • Prepared by: " + orMissing(d.PreparedBy),
		Code:    "Code: " + orMissing(d.LabelCode),
	}
}

func orMissing(s string) string {
	if s == "" {
		return formatting.Missing
	}
	return s
}
