package density_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/pestilab/internal/density"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calculate-density/methanol/25" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"solvent":"methanol","temperature":25,"density_g_per_ml":0.78664}`))
	}))
	defer srv.Close()

	c := density.NewClient(srv.URL, time.Second)

	d, err := c.Density(context.Background(), "methanol", 25)
	if err != nil {
		t.Fatalf("Density error = %v", err)
	}
	if d != 0.78664 {
		t.Errorf("Density = %v, want 0.78664", d)
	}

	if _, err := c.Density(context.Background(), "unknown", 25); !errors.Is(err, density.ErrUnavailable) {
		t.Errorf("unknown solvent err = %v, want ErrUnavailable", err)
	}
}

func TestClientMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"solvent":"water"}`))
	}))
	defer srv.Close()

	_, err := density.NewClient(srv.URL, time.Second).Density(context.Background(), "water", 20)
	if !errors.Is(err, density.ErrInvalidDensity) {
		t.Errorf("err = %v, want ErrInvalidDensity", err)
	}
}

func TestClientEscapesSolvent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.EscapedPath()
		w.Write([]byte(`{"density_g_per_ml":0.8}`))
	}))
	defer srv.Close()

	c := density.NewClient(srv.URL+"/svc", time.Second)

	tests := []struct {
		solvent string
		want    string
	}{
		{"methanol", "/svc/calculate-density/methanol/20"},
		{"Acetone/Hexane (1:1)", "/svc/calculate-density/Acetone%2FHexane%20%281:1%29/20"},
		{"../../admin", "/svc/calculate-density/..%2F..%2Fadmin/20"},
		{"..", "/svc/calculate-density/%2E%2E/20"},
	}

	for _, tt := range tests {
		t.Run(tt.solvent, func(t *testing.T) {
			if _, err := c.Density(context.Background(), tt.solvent, 20); err != nil {
				t.Fatalf("Density error = %v", err)
			}
			if got != tt.want {
				t.Errorf("path = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		lookup  density.LookupFunc
		want    float64
		outcome string
	}{
		{
			name:    "rounds to four decimals",
			lookup:  func(context.Context, string, float64) (float64, error) { return 0.786649, nil },
			want:    0.7866,
			outcome: "ok",
		},
		{
			name:    "error falls back",
			lookup:  func(context.Context, string, float64) (float64, error) { return 0, errors.New("down") },
			want:    density.Fallback,
			outcome: "fallback",
		},
		{
			name:    "non-positive falls back",
			lookup:  func(context.Context, string, float64) (float64, error) { return 0, nil },
			want:    density.Fallback,
			outcome: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			metrics := density.NewMetrics(reg)
			r := density.NewResolver(tt.lookup, metrics, discard())

			first := r.Resolve(context.Background(), "acetonitrile", 20)
			second := r.Resolve(context.Background(), "acetonitrile", 20)

			if first != tt.want || second != first {
				t.Errorf("Resolve = %v then %v, want %v twice", first, second, tt.want)
			}
			if n, err := testutil.GatherAndCount(reg, "pestilab_density_lookups_total"); err != nil || n != 1 {
				t.Errorf("series = %d, %v; want 1", n, err)
			}
		})
	}
}

func TestTrackerLastWriteWins(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	lookup := density.LookupFunc(func(ctx context.Context, solvent string, temp float64) (float64, error) {
		if solvent == "slow" {
			close(entered)
			select {
			case <-release:
				return 0.9, nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
		return 0.7, nil
	})

	tr := density.NewTracker(density.NewResolver(lookup, nil, discard()))
	if tr.Latest() != density.Fallback {
		t.Fatalf("initial Latest = %v, want fallback", tr.Latest())
	}

	var wg sync.WaitGroup
	var staleOK bool
	wg.Go(func() {
		_, staleOK = tr.Resolve(context.Background(), "slow", 20)
	})
	<-entered

	d, ok := tr.Resolve(context.Background(), "fast", 20)
	close(release)
	wg.Wait()

	if !ok || d != 0.7 {
		t.Errorf("latest Resolve = %v, %v; want 0.7, true", d, ok)
	}
	if staleOK {
		t.Error("superseded Resolve reported ok")
	}
	if tr.Latest() != 0.7 {
		t.Errorf("Latest = %v, want 0.7", tr.Latest())
	}
}

func TestHandler(t *testing.T) {
	lookup := density.LookupFunc(func(context.Context, string, float64) (float64, error) {
		return 0, errors.New("offline")
	})
	h := density.NewHandler(density.NewResolver(lookup, nil, discard()), discard())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /density/{solvent}/{temperature}", h.Resolve)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"fallback answers ok", "/density/ethanol/20,5", http.StatusOK},
		{"bad temperature", "/density/ethanol/warm", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}

			var got density.Reading
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Density != density.Fallback || got.Display != "0.8000" || got.TemperatureC != 20.5 {
				t.Errorf("reading = %+v", got)
			}
		})
	}
}
