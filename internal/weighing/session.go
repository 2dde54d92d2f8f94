package weighing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pestilab/internal/density"
)

// Session is a snapshot of one weighing workbench.
type Session struct {
	ID          uuid.UUID   `json:"id"`
	Form        Form        `json:"form"`
	Calculation Calculation `json:"calculation"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Sessions keeps weighing workbenches in memory. Each workbench re-resolves
// its solvent density whenever solvent or temperature change and recomputes
// its calculation from scratch after every change.
type Sessions interface {
	Create(ctx context.Context, form Form) (Session, error)
	Find(id uuid.UUID) (Session, error)
	Update(ctx context.Context, id uuid.UUID, patch Form) (Session, error)
	Delete(id uuid.UUID) error
}

type entry struct {
	mu      sync.Mutex
	session Session
	density float64
	tracker *density.Tracker
}

type sessions struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]*entry
	resolver  *density.Resolver
	tolerance float64
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewSessions creates the workbench registry. Sessions idle longer than ttl
// are evicted when new ones are created.
func NewSessions(resolver *density.Resolver, tolerancePct float64, ttl time.Duration, logger *slog.Logger) Sessions {
	return &sessions{
		entries:   make(map[uuid.UUID]*entry),
		resolver:  resolver,
		tolerance: tolerancePct,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger.With("system", "weighing"),
	}
}

func (s *sessions) Create(ctx context.Context, form Form) (Session, error) {
	now := s.now()
	e := &entry{
		session: Session{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		density: density.Fallback,
		tracker: density.NewTracker(s.resolver),
	}

	s.mu.Lock()
	s.evict(now)
	s.entries[e.session.ID] = e
	s.mu.Unlock()

	s.logger.Info("weighing session created", "id", e.session.ID)
	return s.apply(ctx, e, form, true)
}

func (s *sessions) Find(id uuid.UUID) (Session, error) {
	e, err := s.entry(id)
	if err != nil {
		return Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session, nil
}

func (s *sessions) Update(ctx context.Context, id uuid.UUID, patch Form) (Session, error) {
	e, err := s.entry(id)
	if err != nil {
		return Session{}, err
	}
	return s.apply(ctx, e, patch, false)
}

func (s *sessions) Delete(id uuid.UUID) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	e.tracker.Stop()
	s.logger.Info("weighing session deleted", "id", id)
	return nil
}

// apply merges patch, recomputes immediately with the current density, and
// when the density inputs changed resolves the new density and recomputes
// again. A resolution superseded by a later patch is dropped.
func (s *sessions) apply(ctx context.Context, e *entry, patch Form, initial bool) (Session, error) {
	e.mu.Lock()
	prevSolvent, prevTemp, prevOK := e.session.Form.densityKey()
	e.session.Form.Merge(patch)

	solvent, temp, keyOK := e.session.Form.densityKey()
	changed := initial || keyOK != prevOK || solvent != prevSolvent || temp != prevTemp

	explicit, pinned := e.session.Form.ExplicitDensity()
	if changed && !patch.Density.IsSet() && !initial {
		e.session.Form.Density = Numeric{}
		pinned = false
	}

	needLookup := !pinned && changed && keyOK
	switch {
	case pinned:
		e.density = explicit
	case !keyOK:
		e.density = density.Fallback
	}
	s.recompute(e)
	e.mu.Unlock()

	if needLookup {
		d, ok := e.tracker.Resolve(ctx, solvent, temp)
		if ok {
			e.mu.Lock()
			if cur, ct, _ := e.session.Form.densityKey(); cur == solvent && ct == temp {
				if _, p := e.session.Form.ExplicitDensity(); !p {
					e.density = d
					s.recompute(e)
				}
			}
			e.mu.Unlock()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session, nil
}

func (s *sessions) recompute(e *entry) {
	e.session.Calculation = Evaluate(e.session.Form, e.density, s.tolerance)
	e.session.UpdatedAt = s.now()
}

func (s *sessions) entry(id uuid.UUID) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// evict must be called with s.mu held.
func (s *sessions) evict(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, e := range s.entries {
		e.mu.Lock()
		idle := now.Sub(e.session.UpdatedAt)
		e.mu.Unlock()
		if idle > s.ttl {
			e.tracker.Stop()
			delete(s.entries, id)
			s.logger.Info("weighing session expired", "id", id)
		}
	}
}
