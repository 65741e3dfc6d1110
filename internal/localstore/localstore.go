// Package localstore is a flat key-value store backed by JSON files. It is
// the degraded-mode stand-in for the remote database: when no DATABASE_URL
// is configured, or a user has no authenticated session, all state lives
// here under per-user-namespaced keys.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Entity key segments.
const (
	EntityTransactions = "transactions"
	EntityGoals        = "goals"
	EntitySettings     = "settings"
	EntityOfflineQueue = "offline_queue"
	EntityBackups      = "backups"
	EntitySnapshots    = "snapshots"
	EntitySecurityLog  = "security_log"
)

// Store is a file-backed key-value store. Values are JSON documents, one
// file per key. Writes are atomic (temp file + rename).
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the backing directory if needed and returns a Store.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("local store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Key builds the storage key for an entity. Known users are namespaced by
// user id; anonymous sessions share the bare key.
func Key(entity, userID string) string {
	if userID == "" {
		return "finance_" + entity
	}
	return "finance_" + entity + "_" + userID
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the value stored under key into dest. Returns false when the
// key is absent.
func (s *Store) Get(key string, dest any) (bool, error) {
	raw, ok, err := s.GetRaw(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode local value %q: %w", key, err)
	}
	return true, nil
}

// GetRaw reads the raw JSON stored under key.
func (s *Store) GetRaw(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read local value %q: %w", key, err)
	}
	return raw, true, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode local value %q: %w", key, err)
	}
	return s.PutRaw(key, raw)
}

// PutRaw stores raw JSON under key atomically.
func (s *Store) PutRaw(key string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write local value %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %q: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to store local value %q: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key. Missing keys are a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete local value %q: %w", key, err)
	}
	return nil
}
