package store

import (
	"fmt"
	"os"
	"path/filepath"

	"rollbook/internal/backup"
	"rollbook/internal/config"
)

// NewStoreFromConfig creates a KVStore implementation based on the store config type.
func NewStoreFromConfig(cfg config.StoreConfig) (backup.KVStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite store requires data_dir to be set")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating store data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "rollbook.db"))
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
