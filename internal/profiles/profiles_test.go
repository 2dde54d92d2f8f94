package profiles_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/pestilab/internal/profiles"
	"github.com/JaimeStill/pestilab/pkg/routes"
	"github.com/JaimeStill/pestilab/pkg/settings"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockRepo struct {
	get func(ctx context.Context, key string) (string, bool, error)
	set func(ctx context.Context, key, value string) error
}

func (m *mockRepo) Get(ctx context.Context, key string) (string, bool, error) {
	return m.get(ctx, key)
}

func (m *mockRepo) Set(ctx context.Context, key, value string) error {
	return m.set(ctx, key, value)
}

func registry(t *testing.T) *profiles.Registry {
	t.Helper()
	r, err := profiles.NewRegistry("")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestRegistryCatalog(t *testing.T) {
	r := registry(t)

	want := []string{
		"Zebra_40x20_203",
		"Zebra_50x25_203",
		"Zebra_58x40_300",
		"TSC_40x30_203",
		"Godex_60x40_203",
		"Generic_70x50_300",
		"A4_3x8_63.5x38.1",
		"A4_2x7_99.1x67.7",
		"Zebra_50x25_203_cal102",
	}

	list := r.List()
	if len(list) != len(want) {
		t.Fatalf("List len = %d, want %d", len(list), len(want))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("List[%d] = %q, want %q", i, list[i].ID, id)
		}
	}

	if r.DefaultID() != "Zebra_50x25_203" {
		t.Errorf("DefaultID = %q", r.DefaultID())
	}
}

func TestRegistryGet(t *testing.T) {
	r := registry(t)

	tests := []struct {
		id      string
		density int
		qr      float64
		barcode float64
		scale   float64
		sheet   bool
	}{
		{"Zebra_40x20_203", 203, 24, 12, 1, false},
		{"Zebra_58x40_300", 300, 26, 14, 1, false},
		{"Godex_60x40_203", 203, 28, 16, 1, false},
		{"Generic_70x50_300", 300, 30, 18, 1, false},
		{"A4_3x8_63.5x38.1", 300, 22, 14, 1, true},
		{"Zebra_50x25_203_cal102", 203, 24, 12, 1.02, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, err := r.Get(tt.id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if p.Density != tt.density || p.QRSize != tt.qr || p.BarcodeHeight != tt.barcode || p.Scale != tt.scale {
				t.Errorf("profile = %+v", p)
			}
			if p.IsSheet() != tt.sheet {
				t.Errorf("IsSheet = %v, want %v", p.IsSheet(), tt.sheet)
			}
			if p.BarcodeFormat != "CODE128" || p.QRLevel != "M" {
				t.Errorf("symbols = %s/%s", p.BarcodeFormat, p.QRLevel)
			}
		})
	}

	if _, err := r.Get("nope"); !errors.Is(err, profiles.ErrNotFound) {
		t.Errorf("Get(nope) err = %v", err)
	}
}

func TestRegistryIsReadOnly(t *testing.T) {
	r := registry(t)

	p, _ := r.Get("A4_3x8_63.5x38.1")
	p.Sheet.Grid.Rows = 1
	p.QRSize = 99

	again, _ := r.Get("A4_3x8_63.5x38.1")
	if again.Sheet.Grid.Rows != 8 || again.QRSize != 22 {
		t.Errorf("catalog mutated: %+v", again)
	}
	if again.Sheet.Grid.Cells() != 24 {
		t.Errorf("Cells = %d", again.Sheet.Grid.Cells())
	}
}

func TestNewRegistryUnknownDefault(t *testing.T) {
	if _, err := profiles.NewRegistry("Brother_1x1"); !errors.Is(err, profiles.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestInstructions(t *testing.T) {
	r := registry(t)

	p, _ := r.Get("A4_2x7_99.1x67.7")
	pi := p.Instructions()
	if pi.PaperSize != "210×297 mm" || pi.Scaling != "100%" || pi.FitToPage || pi.Margins != "0" {
		t.Errorf("instructions = %+v", pi)
	}

	cal, _ := r.Get("Zebra_50x25_203_cal102")
	if n := len(cal.Instructions().Notes); n != 4 {
		t.Errorf("calibrated notes = %d, want 4", n)
	}
}

func TestSelectionLoad(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		exists bool
		err    error
		want   string
	}{
		{"absent", "", false, nil, "Zebra_50x25_203"},
		{"stored", "TSC_40x30_203", true, nil, "TSC_40x30_203"},
		{"unknown", "Retired_10x10", true, nil, "Zebra_50x25_203"},
		{"read failure", "", false, errors.New("disk"), "Zebra_50x25_203"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{
				get: func(_ context.Context, key string) (string, bool, error) {
					if key != profiles.SelectionKey {
						t.Errorf("key = %q", key)
					}
					return tt.stored, tt.exists, tt.err
				},
			}

			s := profiles.NewSelection(registry(t), repo, discard)
			if got := s.Load(context.Background()); got.ID != tt.want {
				t.Errorf("Load = %q, want %q", got.ID, tt.want)
			}
			if got := s.Current(); got.ID != tt.want {
				t.Errorf("Current = %q, want %q", got.ID, tt.want)
			}
		})
	}
}

func TestSelectionPersists(t *testing.T) {
	repo := settings.NewMemory(discard)
	ctx := context.Background()

	s := profiles.NewSelection(registry(t), repo, discard)
	if _, err := s.Select(ctx, "Godex_60x40_203"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	if _, err := s.Select(ctx, "missing"); !errors.Is(err, profiles.ErrNotFound) {
		t.Errorf("Select(missing) err = %v", err)
	}
	if s.Current().ID != "Godex_60x40_203" {
		t.Errorf("Current changed after failed select: %q", s.Current().ID)
	}

	restarted := profiles.NewSelection(registry(t), repo, discard)
	if got := restarted.Load(ctx); got.ID != "Godex_60x40_203" {
		t.Errorf("reloaded = %q", got.ID)
	}
}

func TestSelectionWriteFailure(t *testing.T) {
	repo := &mockRepo{
		set: func(context.Context, string, string) error { return errors.New("read-only") },
	}

	s := profiles.NewSelection(registry(t), repo, discard)
	if _, err := s.Select(context.Background(), "TSC_40x30_203"); err == nil {
		t.Fatal("expected error")
	}
	if s.Current().ID != profiles.DefaultID {
		t.Errorf("Current = %q", s.Current().ID)
	}
}

func TestSelectionConcurrentSelects(t *testing.T) {
	var (
		mu      sync.Mutex
		stored  string
		calls   int
		entered = make(chan struct{})
		release = make(chan struct{})
	)
	repo := &mockRepo{
		set: func(_ context.Context, _, value string) error {
			mu.Lock()
			stored = value
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				close(entered)
				<-release
			}
			return nil
		},
	}

	s := profiles.NewSelection(registry(t), repo, discard)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := s.Select(ctx, "Godex_60x40_203"); err != nil {
			t.Errorf("Select: %v", err)
		}
	}()
	<-entered

	second := make(chan struct{})
	go func() {
		defer close(second)
		if _, err := s.Select(ctx, "TSC_40x30_203"); err != nil {
			t.Errorf("Select: %v", err)
		}
	}()

	select {
	case <-second:
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	wg.Wait()
	<-second

	mu.Lock()
	defer mu.Unlock()
	if got := s.Current().ID; got != stored {
		t.Errorf("Current = %q, stored = %q", got, stored)
	}
}

func TestHandler(t *testing.T) {
	r := registry(t)
	s := profiles.NewSelection(r, settings.NewMemory(discard), discard)

	mux := http.NewServeMux()
	routes.Register(mux, profiles.NewHandler(r, s, discard).Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles", nil))
	var list []profiles.Entry
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 9 || list[0].Instructions.Scaling != "100%" {
		t.Errorf("list = %d entries", len(list))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/profiles/selected", strings.NewReader(`{"id":"Zebra_40x20_203"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("select status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles/selected", nil))
	var sel profiles.Entry
	json.NewDecoder(rec.Body).Decode(&sel)
	if sel.ID != "Zebra_40x20_203" || sel.Width != 40 {
		t.Errorf("selected = %+v", sel.Profile)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/profiles/selected", strings.NewReader(`{"id":"x"}`)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("bad select status = %d", rec.Code)
	}
}
