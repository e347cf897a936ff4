// Package storage provides blob storage for uploaded files. It defines a
// System interface over keyed binary objects that resolve to retrieval URLs,
// with a filesystem implementation for development and an S3 implementation
// for deployments backed by AWS or any S3-compatible service.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/JaimeStill/logomagic/pkg/lifecycle"
)

// Storage errors returned by System implementations.
var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrPermissionDenied indicates insufficient permissions to access the key.
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey indicates the key is malformed or contains invalid characters.
	// This includes empty keys and path traversal attempts.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// System defines blob storage operations.
type System interface {
	// Store saves data at the specified key. An existing key is overwritten.
	Store(ctx context.Context, key string, data []byte) error

	// StoreWithType is Store with a known media type. Providers that keep
	// object metadata record contentType instead of sniffing data; an empty
	// contentType behaves like Store.
	StoreWithType(ctx context.Context, key string, data []byte, contentType string) error

	// Retrieve returns the data stored at the specified key.
	// Returns ErrNotFound if the key does not exist.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the data at the specified key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Validate reports whether a key exists and is accessible.
	Validate(ctx context.Context, key string) (bool, error)

	// URL returns the retrieval URL for a stored key.
	URL(ctx context.Context, key string) (string, error)

	// Start registers lifecycle hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New creates the System selected by cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderFilesystem, "":
		fs, err := NewFilesystem(cfg, logger)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case ProviderS3:
		s, err := NewS3(context.Background(), cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

// cleanKey normalizes a key to a relative slash-separated path,
// rejecting empty, absolute, and traversing keys.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}

	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}

	return cleaned, nil
}

// joinURL appends an escaped key to a base URL.
func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
