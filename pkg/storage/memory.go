package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/JaimeStill/pestilab/pkg/lifecycle"
)

type memory struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	logger *slog.Logger
}

// NewMemory returns a process-local System. Contents are lost on exit.
func NewMemory(logger *slog.Logger) System {
	return &memory{blobs: make(map[string][]byte), logger: logger}
}

func (m *memory) Start(_ *lifecycle.Coordinator) error {
	m.logger.Info("starting storage system")
	return nil
}

func (m *memory) Upload(_ context.Context, key string, reader io.Reader, _ string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return nil
}

func (m *memory) Download(_ context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(data))), nil
}

func (m *memory) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *memory) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	m.mu.RLock()
	_, ok := m.blobs[key]
	m.mu.RUnlock()
	return ok, nil
}
