package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeStill/pestilab/pkg/settings"
)

// SelectionKey is the settings key holding the selected profile id.
const SelectionKey = "label_profile"

// Selection tracks the profile in use and persists every change.
type Selection struct {
	registry *Registry
	repo     settings.Repository
	logger   *slog.Logger

	mu      sync.RWMutex
	current string
}

func NewSelection(registry *Registry, repo settings.Repository, logger *slog.Logger) *Selection {
	return &Selection{
		registry: registry,
		repo:     repo,
		logger:   logger.With("system", "profile-selection"),
		current:  registry.DefaultID(),
	}
}

// Load reads the stored selection. An absent or unknown id, or a failed
// read, leaves the default selected.
func (s *Selection) Load(ctx context.Context) Profile {
	id, ok, err := s.repo.Get(ctx, SelectionKey)
	switch {
	case err != nil:
		s.logger.Warn("failed to read stored profile, using default", "error", err)
		id = s.registry.DefaultID()
	case !ok:
		id = s.registry.DefaultID()
	}

	p, err := s.registry.Get(id)
	if err != nil {
		s.logger.Warn("stored profile unknown, using default", "id", id)
		p = s.registry.Default()
	}

	s.mu.Lock()
	s.current = p.ID
	s.mu.Unlock()

	return p
}

// Current returns the selected profile.
func (s *Selection) Current() Profile {
	s.mu.RLock()
	id := s.current
	s.mu.RUnlock()

	p, err := s.registry.Get(id)
	if err != nil {
		return s.registry.Default()
	}
	return p
}

// Select makes id the current profile and writes it back. The lock is held
// across the write so the stored and current ids always agree.
func (s *Selection) Select(ctx context.Context, id string) (Profile, error) {
	p, err := s.registry.Get(id)
	if err != nil {
		return Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Set(ctx, SelectionKey, p.ID); err != nil {
		return Profile{}, fmt.Errorf("persist profile selection: %w", err)
	}
	s.current = p.ID

	s.logger.Info("profile selected", "id", p.ID)
	return p, nil
}
