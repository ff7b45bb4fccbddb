package kv

import (
	"fmt"
	"path/filepath"

	"fieldmark/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on the storage config type.
func NewStoreFromConfig(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite storage requires data_dir to be set")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "fieldmark.db"))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
