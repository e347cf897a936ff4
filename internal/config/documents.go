package config

import (
	"fmt"
	"os"
)

// Document store providers.
const (
	DocumentsPostgres = "postgres"
	DocumentsMemory   = "memory"
)

// DocumentsConfig selects the document store backing user and payment records.
type DocumentsConfig struct {
	// Provider is "postgres" or "memory". Default: "postgres"
	Provider string `toml:"provider"`
}

func (c *DocumentsConfig) Finalize() error {
	if c.Provider == "" {
		c.Provider = DocumentsPostgres
	}
	if v := os.Getenv("DOCUMENTS_PROVIDER"); v != "" {
		c.Provider = v
	}

	switch c.Provider {
	case DocumentsPostgres, DocumentsMemory:
		return nil
	default:
		return fmt.Errorf("invalid provider: %s (must be postgres or memory)", c.Provider)
	}
}

func (c *DocumentsConfig) Merge(overlay *DocumentsConfig) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
}
