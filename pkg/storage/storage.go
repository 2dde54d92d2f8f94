// Package storage stores export artifacts as blobs behind a driver-neutral
// interface. Azure Blob Storage, S3-compatible object stores, the local
// filesystem, and process memory are supported.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/pestilab/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that prepares the container, bucket, or root.
	Start(lc *lifecycle.Coordinator) error
	// Upload writes data to key with the given content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns a stream for key. The caller must close it.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system selected by cfg.Driver. Remote clients are
// constructed here but not contacted until Start.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "driver", cfg.Driver)

	switch cfg.Driver {
	case DriverAzure:
		return newAzure(cfg, logger)
	case DriverS3:
		return newS3(ctx, cfg, logger)
	case DriverFilesystem:
		return newFilesystem(cfg.Root, logger), nil
	case DriverMemory:
		return NewMemory(logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}
