package storage

import (
	"context"

	"github.com/FloatingDust36/siyensyago/internal/storage/sqlite"
)

// KV defines the local key-value persistence boundary. The session store and
// the museum each keep one serialized collection under a single namespaced
// key; there is no incremental write at this layer.
type KV interface {
	// Get returns the stored bytes for key, or (nil, nil) if absent
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the stored bytes for key
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}

// Config holds local database configuration
type Config struct {
	// Path is the SQLite database file path
	// Special value ":memory:" creates an in-memory database (useful for tests)
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: ".siyensya/local.db",
	}
}

// NewKV creates a new SQLite-backed key-value store.
// The ctx parameter is currently unused but kept for API consistency.
func NewKV(ctx context.Context, cfg *Config) (KV, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = ".siyensya/local.db"
	}
	return sqlite.New(cfg.Path)
}
