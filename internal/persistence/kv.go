// Package persistence provides the key-value stores save slots are kept in.
// Every backend offers last-writer-wins semantics with atomic per-key writes.
package persistence

import (
	"errors"
	"fmt"

	"github.com/talgya/planet-core/internal/config"
	"github.com/talgya/planet-core/internal/logging"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("persistence: key not found")

// KV is the byte store consumed by the slot store.
type KV interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	Close() error
}

// Open returns the backend selected by cfg.Backend.
func Open(cfg config.StorageConfig) (KV, error) {
	logger := logging.Component(nil, "persistence").With("backend", cfg.Backend)

	var (
		kv  KV
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		kv = NewMemoryStore()
	case config.BackendSQLite:
		kv, err = OpenSQLite(cfg.Path)
	case config.BackendPostgres:
		kv, err = OpenPostgres(cfg.DSN)
	case config.BackendRedis:
		kv, err = OpenRedis(cfg.RedisURL, cfg.RedisPrefix, cfg.Timeout)
	case config.BackendFile:
		kv, err = OpenFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		return nil, err
	}
	logger.Info("storage opened")
	return kv, nil
}
