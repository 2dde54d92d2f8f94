package layout_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/pestilab/internal/labels"
	"github.com/JaimeStill/pestilab/internal/layout"
	"github.com/JaimeStill/pestilab/internal/profiles"
	"github.com/JaimeStill/pestilab/pkg/routes"
	"github.com/JaimeStill/pestilab/pkg/settings"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var sample = labels.Data{
	LabelCode:    "ATR-0001",
	CompoundName: "Atrazine",
	CAS:          "1912-24-9",
	ActualConc:   "1000.000 ppm",
	PreparedBy:   "ayse",
	Date:         "2026-10-18",
}

func profile(t *testing.T, id string) profiles.Profile {
	t.Helper()
	r, err := profiles.NewRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	p, err := r.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestMMToPixels(t *testing.T) {
	tests := []struct {
		mm      float64
		density int
		scale   float64
		want    int
	}{
		{25.4, 203, 1, 203},
		{24, 203, 1, 192},
		{12, 203, 1, 96},
		{50, 203, 1, 400},
		{24, 203, 1.02, 196},
		{1, 300, 1, 12},
		{63.5, 300, 1, 750},
		{0, 203, 1, 0},
	}

	for _, tt := range tests {
		if got := layout.MMToPixels(tt.mm, tt.density, tt.scale); got != tt.want {
			t.Errorf("MMToPixels(%g, %d, %g) = %d, want %d", tt.mm, tt.density, tt.scale, got, tt.want)
		}
	}
}

func TestRenderSingleCard(t *testing.T) {
	e := layout.NewEngine(nil, discard)
	l := e.Render(sample, profile(t, "Zebra_50x25_203"))

	if l.Sheet || len(l.Cards) != 1 {
		t.Fatalf("sheet = %v, cards = %d", l.Sheet, len(l.Cards))
	}

	c := l.Cards[0]
	if c.WidthPx != 400 || c.HeightPx != 200 {
		t.Errorf("px = %dx%d, want 400x200", c.WidthPx, c.HeightPx)
	}
	if c.Margin != profiles.Uniform(1) {
		t.Errorf("margin = %+v", c.Margin)
	}
	if !c.QR.OK() || c.QR.Width != 192 || c.QR.Height != 192 {
		t.Errorf("qr = %dx%d ok=%v", c.QR.Width, c.QR.Height, c.QR.OK())
	}
	if !c.Barcode.OK() || c.Barcode.Height != 96 {
		t.Errorf("barcode height = %d ok=%v (%v)", c.Barcode.Height, c.Barcode.OK(), c.Barcode.Err())
	}
	if l.Page != (profiles.Size{Width: 50, Height: 25}) {
		t.Errorf("page = %+v", l.Page)
	}
}

func TestRenderSheetGrid(t *testing.T) {
	e := layout.NewEngine(nil, discard)
	l := e.Render(sample, profile(t, "A4_3x8_63.5x38.1"))

	if !l.Sheet || len(l.Cards) != 24 {
		t.Fatalf("sheet = %v, cards = %d, want 24", l.Sheet, len(l.Cards))
	}

	for i, c := range l.Cards {
		if c.Data != sample {
			t.Errorf("card %d data = %+v", i, c.Data)
		}
		if c.Margin != (profiles.Insets{}) {
			t.Errorf("card %d margin = %+v, want zero", i, c.Margin)
		}
		if c.Width != 63.5 || c.Height != 38.1 {
			t.Errorf("card %d size = %gx%g", i, c.Width, c.Height)
		}
	}

	last := l.Cards[23]
	if last.Row != 7 || last.Col != 2 {
		t.Errorf("last cell = (%d,%d)", last.Row, last.Col)
	}
	if math.Abs(last.X-132) > 1e-9 || math.Abs(last.Y-266.7) > 1e-9 {
		t.Errorf("last cell at (%g,%g), want (132,266.7)", last.X, last.Y)
	}
	if l.Page != (profiles.Size{Width: 210, Height: 297}) {
		t.Errorf("page = %+v", l.Page)
	}
}

func TestRenderEmptyCodeSuppressesBarcode(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := layout.NewEngine(layout.NewMetrics(reg), discard)

	d := sample
	d.LabelCode = ""
	c := e.Render(d, profile(t, "Zebra_40x20_203")).Cards[0]

	if c.Barcode.OK() || !errors.Is(c.Barcode.Err(), layout.ErrEmptyValue) {
		t.Errorf("barcode ok=%v err=%v", c.Barcode.OK(), c.Barcode.Err())
	}
	if c.Barcode.Failure == "" {
		t.Error("failure reason not recorded")
	}
	if !c.QR.OK() || c.QR.Value != "-" {
		t.Errorf("qr value = %q ok=%v", c.QR.Value, c.QR.OK())
	}
	if c.Lines.Code != "Code: -" {
		t.Errorf("code line = %q", c.Lines.Code)
	}

	n, err := testutil.GatherAndCount(reg, "pestilab_symbol_failures_total")
	if err != nil || n != 1 {
		t.Errorf("failure series = %d, %v", n, err)
	}
}

func TestEncodeBarcodeFormats(t *testing.T) {
	tests := []struct {
		value  string
		format string
		ok     bool
	}{
		{"ATR-0001", "CODE128", true},
		{"ATR-0001", "", true},
		{"ATR-0001", "CODE39", true},
		{"ATR-0001", "code93", true},
		{"5901234123457", "EAN13", true},
		{"ATR-0001", "EAN13", false},
		{"ATR-0001", "PDF417", false},
	}

	for _, tt := range tests {
		s := layout.EncodeBarcode(tt.value, tt.format, 50)
		if s.OK() != tt.ok {
			t.Errorf("EncodeBarcode(%q, %q) ok = %v, err = %v", tt.value, tt.format, s.OK(), s.Err())
		}
	}

	if s := layout.EncodeBarcode("X", "CODE128", 0); !errors.Is(s.Err(), layout.ErrSymbolSize) {
		t.Errorf("zero height err = %v", s.Err())
	}
	if s := layout.EncodeBarcode("X", "PDF417", 10); !errors.Is(s.Err(), layout.ErrUnsupportedFormat) {
		t.Errorf("format err = %v", s.Err())
	}
}

func TestEncodeQRTooSmall(t *testing.T) {
	s := layout.EncodeQR("ATR-0001", "M", 5)
	if s.OK() || !errors.Is(s.Err(), layout.ErrSymbolSize) {
		t.Errorf("ok=%v err=%v", s.OK(), s.Err())
	}
}

func TestTextLines(t *testing.T) {
	got := layout.TextLines(sample)
	want := layout.Lines{
		Name:    "Atrazine",
		Details: "CAS: 1912-24-9 • Conc.: 1000 ppm",
		Prep:    "Date: 2026-10-18 • Prepared by: ayse",
		Code:    "Code: ATR-0001",
	}
	if got != want {
		t.Errorf("TextLines = %+v\nwant %+v", got, want)
	}

	empty := layout.TextLines(labels.Data{ActualConc: "12.3400PPM"})
	if empty.Details != "CAS: - • Conc.: 12.34 ppm" || empty.Name != "-" {
		t.Errorf("empty lines = %+v", empty)
	}
}

func TestWriteHTML(t *testing.T) {
	e := layout.NewEngine(nil, discard)

	var buf bytes.Buffer
	if err := layout.WriteHTML(&buf, e.Render(sample, profile(t, "A4_3x8_63.5x38.1"))); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}

	html := buf.String()
	if n := strings.Count(html, `class="card"`); n != 24 {
		t.Errorf("cards in html = %d", n)
	}
	if n := strings.Count(html, "Code: ATR-0001"); n != 24 {
		t.Errorf("code lines = %d", n)
	}
	if !strings.Contains(html, "size: 210mm 297mm") {
		t.Error("page size missing")
	}
	if !strings.Contains(html, "data:image/png;base64,") {
		t.Error("symbol images missing")
	}

	d := sample
	d.LabelCode = ""
	buf.Reset()
	layout.WriteHTML(&buf, e.Render(d, profile(t, "Zebra_50x25_203")))
	if strings.Contains(buf.String(), `class="barcode"`) {
		t.Error("failed barcode rendered")
	}
	if !strings.Contains(buf.String(), `class="qr"`) {
		t.Error("qr missing")
	}
}

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	r, _ := profiles.NewRegistry("")
	sel := profiles.NewSelection(r, settings.NewMemory(discard), discard)
	mapper := labels.NewMapper(time.UTC)

	h := layout.NewHandler(layout.NewEngine(nil, discard), mapper, r, sel, labels.NewPreview(), discard)
	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

func serve(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandlerLayout(t *testing.T) {
	mux := newMux(t)

	rec := serve(mux, http.MethodPost, "/labels/layout", `{"record":{"labelCode":"ATR-0001"},"profile_id":"A4_2x7_99.1x67.7"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var l layout.Layout
	json.NewDecoder(rec.Body).Decode(&l)
	if len(l.Cards) != 14 || l.Cards[0].Data.LabelCode != "ATR-0001" {
		t.Errorf("layout cards = %d", len(l.Cards))
	}

	tests := []struct {
		body string
		want int
	}{
		{`{"record":{"code":"A"},"profile_id":"missing"}`, http.StatusNotFound},
		{`{"profile_id":"Zebra_40x20_203"}`, http.StatusBadRequest},
		{`nope`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := serve(mux, http.MethodPost, "/labels/layout", tt.body); rec.Code != tt.want {
			t.Errorf("body %s status = %d, want %d", tt.body, rec.Code, tt.want)
		}
	}

	rec = serve(mux, http.MethodPost, "/labels/render", `{"record":{"code":"ATR-0001"}}`)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("render status = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestHandlerPreview(t *testing.T) {
	mux := newMux(t)

	if rec := serve(mux, http.MethodGet, "/labels/preview/print", ""); rec.Code != http.StatusNotFound {
		t.Errorf("print before open = %d", rec.Code)
	}

	rec := serve(mux, http.MethodPost, "/labels/preview", `{"record":{"code":"GLY-0002","compound_name":"Glyphosate"}}`)
	var state layout.PreviewState
	json.NewDecoder(rec.Body).Decode(&state)
	if !state.Open || state.Data == nil || state.Data.CompoundName != "Glyphosate" {
		t.Fatalf("state = %+v", state)
	}

	rec = serve(mux, http.MethodGet, "/labels/preview/print", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Code: GLY-0002") {
		t.Errorf("print status = %d", rec.Code)
	}

	if rec := serve(mux, http.MethodDelete, "/labels/preview", ""); rec.Code != http.StatusNoContent {
		t.Errorf("close status = %d", rec.Code)
	}

	rec = serve(mux, http.MethodGet, "/labels/preview", "")
	state = layout.PreviewState{}
	json.NewDecoder(rec.Body).Decode(&state)
	if state.Open {
		t.Error("preview still open")
	}
}
