package config

import (
	"sync/atomic"

	"github.com/tracklab/posefilter/internal/filter"
)

// Store publishes the live configuration to the processing loop. Readers
// get an immutable snapshot through an atomic pointer load, so writers
// (the control API, the file watcher) never block the hot path.
type Store struct {
	cur atomic.Pointer[Config]
}

// NewStore creates a store holding cfg.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.Replace(cfg)
	return s
}

// Snapshot returns the current configuration. Callers must treat it as
// read-only; updates go through Replace with a fresh value.
func (s *Store) Snapshot() *Config {
	return s.cur.Load()
}

// Replace publishes a new configuration.
func (s *Store) Replace(cfg *Config) {
	s.cur.Store(cfg)
}

// FilterSettings implements filter.SettingsProvider.
func (s *Store) FilterSettings() filter.Settings {
	return s.Snapshot().Filter.Settings()
}
