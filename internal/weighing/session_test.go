package weighing_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pestilab/internal/density"
	"github.com/JaimeStill/pestilab/internal/weighing"
	"github.com/JaimeStill/pestilab/pkg/routes"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingLookup struct {
	calls  atomic.Int32
	values map[string]float64
}

func (l *countingLookup) Density(_ context.Context, solvent string, _ float64) (float64, error) {
	l.calls.Add(1)
	if d, ok := l.values[solvent]; ok {
		return d, nil
	}
	return 0, errors.New("unknown solvent")
}

func newResolver(l density.Lookup) *density.Resolver {
	return density.NewResolver(l, nil, discard())
}

func baseForm() weighing.Form {
	return weighing.Form{
		WeighedAmount:       weighing.NewNumeric(10),
		PurityPct:           weighing.NewNumeric(100),
		TargetConcentration: weighing.NewNumeric(500),
		Mode:                "mass_per_mass",
		Solvent:             "methanol",
		TemperatureC:        weighing.NewNumeric(20),
	}
}

func TestSessionResolvesDensityOnChange(t *testing.T) {
	lookup := &countingLookup{values: map[string]float64{"methanol": 0.7914, "acetone": 0.7845}}
	s := weighing.NewSessions(newResolver(lookup), weighing.DefaultTolerancePct, time.Hour, discard())
	ctx := context.Background()

	sess, err := s.Create(ctx, baseForm())
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if sess.Calculation.Density != 0.7914 || !sess.Calculation.Valid {
		t.Fatalf("calculation = %+v", sess.Calculation)
	}
	if lookup.calls.Load() != 1 {
		t.Errorf("lookups = %d, want 1", lookup.calls.Load())
	}

	sess, _ = s.Update(ctx, sess.ID, weighing.Form{PurityPct: weighing.NewNumeric(99)})
	if lookup.calls.Load() != 1 {
		t.Errorf("purity change triggered a lookup")
	}
	if sess.Calculation.Density != 0.7914 {
		t.Errorf("density lost on unrelated change: %v", sess.Calculation.Density)
	}

	sess, _ = s.Update(ctx, sess.ID, weighing.Form{Solvent: "acetone"})
	if lookup.calls.Load() != 2 || sess.Calculation.Density != 0.7845 {
		t.Errorf("solvent change: calls %d density %v", lookup.calls.Load(), sess.Calculation.Density)
	}

	sess, _ = s.Update(ctx, sess.ID, weighing.Form{Solvent: "toluene"})
	if sess.Calculation.Density != density.Fallback {
		t.Errorf("failed lookup density = %v, want fallback", sess.Calculation.Density)
	}
}

func TestSessionExplicitDensity(t *testing.T) {
	lookup := &countingLookup{values: map[string]float64{"methanol": 0.7914}}
	s := weighing.NewSessions(newResolver(lookup), weighing.DefaultTolerancePct, time.Hour, discard())
	ctx := context.Background()

	form := baseForm()
	form.Density = weighing.Text("0,79")
	sess, _ := s.Create(ctx, form)
	if sess.Calculation.Density != 0.79 || lookup.calls.Load() != 0 {
		t.Fatalf("explicit density ignored: %v (calls %d)", sess.Calculation.Density, lookup.calls.Load())
	}

	sess, _ = s.Update(ctx, sess.ID, weighing.Form{TemperatureC: weighing.NewNumeric(25)})
	if sess.Calculation.Density != 0.7914 {
		t.Errorf("temperature change kept pinned density %v", sess.Calculation.Density)
	}
}

func TestSessionWithheldUntilComplete(t *testing.T) {
	s := weighing.NewSessions(newResolver(&countingLookup{}), 1, time.Hour, discard())
	ctx := context.Background()

	sess, _ := s.Create(ctx, weighing.Form{Mode: "w/v"})
	if sess.Calculation.Valid || sess.Calculation.Result != nil {
		t.Fatalf("empty form produced a result: %+v", sess.Calculation)
	}

	sess, _ = s.Update(ctx, sess.ID, weighing.Form{
		WeighedAmount:       weighing.NewNumeric(12.5),
		PurityPct:           weighing.NewNumeric(100),
		TargetConcentration: weighing.NewNumeric(1000),
		TemperatureC:        weighing.NewNumeric(20),
	})
	if !sess.Calculation.Valid || sess.Calculation.Result.RequiredVolumeMl != 12.5 {
		t.Errorf("completed form = %+v", sess.Calculation)
	}
}

func TestSessionNotFound(t *testing.T) {
	s := weighing.NewSessions(newResolver(&countingLookup{}), 1, time.Hour, discard())

	if _, err := s.Find(uuid.New()); !errors.Is(err, weighing.ErrNotFound) {
		t.Errorf("Find err = %v", err)
	}
	if err := s.Delete(uuid.New()); !errors.Is(err, weighing.ErrNotFound) {
		t.Errorf("Delete err = %v", err)
	}
}

func newMux(h *weighing.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

func TestHandlerCalculate(t *testing.T) {
	lookup := &countingLookup{values: map[string]float64{"methanol": 0.79}}
	resolver := newResolver(lookup)
	h := weighing.NewHandler(weighing.NewSessions(resolver, 1, time.Hour, discard()), resolver, 1, discard())
	mux := newMux(h)

	tests := []struct {
		name      string
		body      string
		status    int
		wantValid bool
	}{
		{
			"valid w/v",
			`{"weighed_amount":12.5,"purity_pct":100,"target_concentration":1000,"mode":"mass_per_volume","solvent":"methanol","temperature_c":20}`,
			http.StatusOK, true,
		},
		{
			"withheld",
			`{"weighed_amount":12.5,"purity_pct":0,"target_concentration":1000,"mode":"mass_per_volume","temperature_c":20}`,
			http.StatusOK, false,
		},
		{"malformed", `{"weighed_amount":`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/weighing/calculate", strings.NewReader(tt.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}

			var calc weighing.Calculation
			if err := json.NewDecoder(rec.Body).Decode(&calc); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if calc.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", calc.Valid, tt.wantValid)
			}
			if tt.wantValid && (calc.Density != 0.79 || calc.Display.ActualConcentration != "1000.000") {
				t.Errorf("calc = %+v", calc)
			}
		})
	}
}

func TestHandlerSessionLifecycle(t *testing.T) {
	resolver := newResolver(&countingLookup{values: map[string]float64{"methanol": 0.79}})
	h := weighing.NewHandler(weighing.NewSessions(resolver, 1, time.Hour, discard()), resolver, 1, discard())
	mux := newMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/weighing/sessions", strings.NewReader(`{"mode":"w/w","solvent":"methanol","temperature_c":"20"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	var sess weighing.Session
	json.NewDecoder(rec.Body).Decode(&sess)

	path := "/weighing/sessions/" + sess.ID.String()

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"weighed_amount":10,"purity_pct":100,"target_concentration":500}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d", rec.Code)
	}
	json.NewDecoder(rec.Body).Decode(&sess)
	if !sess.Calculation.Valid || sess.Calculation.Result.RequiredMassG != 19.99 {
		t.Errorf("patched calculation = %+v", sess.Calculation)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weighing/sessions/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", rec.Code)
	}
}
