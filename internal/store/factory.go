package store

import (
	"fmt"
	"path/filepath"

	"recheck-go/internal/config"
	"recheck-go/internal/recheck"
)

// NewStoreFromConfig creates a Store implementation based on the store config type.
// An empty type means the default TOML file store.
func NewStoreFromConfig(cfg config.StoreConfig, hostID string) (recheck.Store, error) {
	switch cfg.Type {
	case "", "toml":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for toml store")
		}
		return NewTOMLStore(cfg.Path)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, hostID+".db"))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
