// Package density resolves temperature-corrected solvent densities from an
// external service, substituting a fallback whenever the service cannot
// answer.
package density

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
)

// Fallback is the density in g/mL used when a lookup fails.
const Fallback = 0.8000

// Resolver wraps a Lookup with rounding and the fallback policy. Resolve
// never fails.
type Resolver struct {
	lookup  Lookup
	metrics *Metrics
	logger  *slog.Logger
}

// NewResolver creates a Resolver. metrics may be nil.
func NewResolver(lookup Lookup, metrics *Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		lookup:  lookup,
		metrics: metrics,
		logger:  logger.With("system", "density"),
	}
}

// Resolve returns the density of solvent at temperatureC rounded to four
// decimals, or Fallback if the lookup fails or returns a non-positive value.
func (r *Resolver) Resolve(ctx context.Context, solvent string, temperatureC float64) float64 {
	d, err := r.lookup.Density(ctx, solvent, temperatureC)
	if err == nil && (math.IsNaN(d) || math.IsInf(d, 0) || d <= 0) {
		err = ErrInvalidDensity
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			r.logger.Debug("density lookup cancelled", "solvent", solvent, "temperature", temperatureC)
		} else {
			r.logger.Warn("density lookup failed, using fallback",
				"solvent", solvent,
				"temperature", temperatureC,
				"fallback", Fallback,
				"error", err,
			)
			r.metrics.observe("fallback")
		}
		return Fallback
	}

	r.metrics.observe("ok")
	return math.Round(d*1e4) / 1e4
}

// Tracker serializes density resolution for one input stream. Each call to
// Resolve supersedes the ones before it: their lookups are cancelled and
// their results discarded, so a stale answer never replaces a newer one.
type Tracker struct {
	resolver *Resolver

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	latest float64
}

// NewTracker creates a Tracker whose initial density is Fallback.
func NewTracker(resolver *Resolver) *Tracker {
	return &Tracker{resolver: resolver, latest: Fallback}
}

// Resolve looks up the density for solvent and temperatureC. ok is false
// when a later call superseded this one before it finished.
func (t *Tracker) Resolve(ctx context.Context, solvent string, temperatureC float64) (density float64, ok bool) {
	t.mu.Lock()
	t.seq++
	ticket := t.seq
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()

	d := t.resolver.Resolve(ctx, solvent, temperatureC)

	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket != t.seq {
		return 0, false
	}
	cancel()
	t.cancel = nil
	t.latest = d
	return d, true
}

// Latest returns the most recent accepted density.
func (t *Tracker) Latest() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Stop cancels any lookup in flight.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
