package profiles

import "fmt"

// Registry serves the profile catalog.
type Registry struct {
	index     map[string]int
	defaultID string
}

// NewRegistry builds a Registry whose default is defaultID, or DefaultID
// when empty.
func NewRegistry(defaultID string) (*Registry, error) {
	if defaultID == "" {
		defaultID = DefaultID
	}

	index := make(map[string]int, len(catalog))
	for i, p := range catalog {
		index[p.ID] = i
	}

	if _, ok := index[defaultID]; !ok {
		return nil, fmt.Errorf("default profile %q: %w", defaultID, ErrNotFound)
	}

	return &Registry{index: index, defaultID: defaultID}, nil
}

// Get returns the profile with id.
func (r *Registry) Get(id string) (Profile, error) {
	i, ok := r.index[id]
	if !ok {
		return Profile{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return catalog[i].clone(), nil
}

// List returns every profile in display order.
func (r *Registry) List() []Profile {
	out := make([]Profile, len(catalog))
	for i, p := range catalog {
		out[i] = p.clone()
	}
	return out
}

// DefaultID returns the id of the profile used when none is selected.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Default returns the default profile.
func (r *Registry) Default() Profile {
	return catalog[r.index[r.defaultID]].clone()
}
