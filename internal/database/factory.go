package database

import (
	"fmt"
	"os"
	"path/filepath"

	"journeyd/internal/config"
	"journeyd/internal/database/migrations"
	"journeyd/internal/journey"
)

// NewStoreFromConfig creates a Store implementation based on the database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig, clock journey.Clock) (*SQLiteStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "journeys.db"), clock)
	case "memory":
		store, err := NewSQLiteStore(":memory:", clock)
		if err != nil {
			return nil, err
		}
		// An in-memory database starts empty every run, so bring the schema
		// up here rather than requiring a separate migrate step.
		if err := migrations.MigrateUp(store.DB()); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
