// Package history records a durable, queryable audit trail of all finance
// data mutations, and manages manual and automatic backups independent of
// the live data store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
	"gitlab.com/yelinaung/finance-tracker/internal/store"
)

// Sync statuses.
const (
	StatusIdle    = "idle"
	StatusSyncing = "syncing"
	StatusError   = "error"
)

// cacheLimit bounds the in-memory history cache to the most recent entries.
const cacheLimit = 100

// localLogLimit bounds the snapshot log kept on the local fallback path.
const localLogLimit = 500

// ErrAutoBackupDelete is returned when a caller tries to delete an
// automatic backup.
var ErrAutoBackupDelete = errors.New("automatic backups cannot be deleted")

// ErrNotFound mirrors the repository sentinel for local-path lookups.
var ErrNotFound = repository.ErrNotFound

// DataStore is the slice of the finance data store the history layer needs
// for backups and restores. Implemented by *store.Store.
type DataStore interface {
	CurrentState(ctx context.Context) (*models.FullState, error)
	ReplaceState(ctx context.Context, state *models.FullState) error
	ApplyEntityPatch(ctx context.Context, entityType, operation, entityID string, payload json.RawMessage) error
	Reload(ctx context.Context) error
}

// Repos bundles the remote repositories. All nil in local-only mode.
type Repos struct {
	Snapshots     *repository.SnapshotRepository
	RestorePoints *repository.RestorePointRepository
}

// Store is the snapshot/history store for one session. It owns its own
// cache and never shares mutable state with the finance data store.
type Store struct {
	session   store.Session
	repos     Repos
	local     *localstore.Store
	data      DataStore
	sessionID string

	mu          sync.RWMutex
	cache       []models.DataSnapshot
	status      string
	lastVersion int64
}

// New creates a history store for one session. repos may be the zero value
// when no database is configured.
func New(session store.Session, repos Repos, local *localstore.Store) *Store {
	return &Store{
		session:   session,
		repos:     repos,
		local:     local,
		sessionID: uuid.NewString(),
		status:    StatusIdle,
	}
}

// SetDataStore attaches the finance data store. Called during wiring; the
// two stores reference each other only through narrow interfaces.
func (h *Store) SetDataStore(data DataStore) { h.data = data }

// Status returns the current sync status (idle, syncing or error).
func (h *Store) Status() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

func (h *Store) setStatus(status string) {
	h.mu.Lock()
	h.status = status
	h.mu.Unlock()
}

func (h *Store) remote() bool {
	return h.repos.Snapshots != nil && h.session.Authenticated
}

func (h *Store) localKey(entity string) string {
	return localstore.Key(entity, h.session.UserID)
}

// nextVersion derives a monotonic version from the wall clock. Two
// snapshots in the same millisecond still get distinct versions.
func (h *Store) nextVersion() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := time.Now().UnixMilli()
	if v <= h.lastVersion {
		v = h.lastVersion + 1
	}
	h.lastVersion = v
	return v
}

// checksum computes the deterministic integrity hash of a payload. FNV-1a:
// integrity display, not tamper evidence.
func checksum(payload []byte) string {
	hasher := fnv.New32a()
	_, _ = hasher.Write(payload)
	return fmt.Sprintf("%08x", hasher.Sum32())
}

func marshalPayload(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot payload: %w", err)
	}
	return raw, nil
}

// Record appends one audit snapshot for a mutation. On the remote path the
// snapshot is written immediately; offline or unauthenticated sessions
// queue it for the next sync instead of dropping it.
func (h *Store) Record(ctx context.Context, operation, entityType, entityID string, previous, next any, description string) error {
	prevRaw, err := marshalPayload(previous)
	if err != nil {
		return err
	}
	nextRaw, err := marshalPayload(next)
	if err != nil {
		return err
	}

	if description == "" {
		description = fmt.Sprintf("%s %s", operation, entityType)
	}

	snap := models.DataSnapshot{
		ID:                uuid.NewString(),
		UserID:            h.session.UserID,
		Timestamp:         time.Now(),
		Version:           h.nextVersion(),
		Operation:         operation,
		EntityType:        entityType,
		EntityID:          entityID,
		PreviousData:      prevRaw,
		NewData:           nextRaw,
		ChangeDescription: description,
		Device: models.DeviceInfo{
			UserAgent: "finance-tracker/1.0 (go)",
			Platform:  runtime.GOOS,
			SessionID: h.sessionID,
		},
		Metadata: models.SnapshotMetadata{
			SizeBytes:  len(nextRaw),
			Checksum:   checksum(nextRaw),
			SyncStatus: models.SnapshotSynced,
		},
	}

	if h.remote() {
		h.setStatus(StatusSyncing)
		if err := h.repos.Snapshots.Insert(ctx, &snap); err != nil {
			h.setStatus(StatusError)
			return err
		}
		h.prependToCache(snap)
		h.setStatus(StatusIdle)
		return nil
	}

	snap.Metadata.SyncStatus = models.SnapshotPending
	if err := h.appendToLocalLog(snap); err != nil {
		return err
	}
	if err := h.enqueueOffline(snap); err != nil {
		return err
	}
	h.prependToCache(snap)
	return nil
}

func (h *Store) prependToCache(snap models.DataSnapshot) {
	h.mu.Lock()
	h.cache = append([]models.DataSnapshot{snap}, h.cache...)
	if len(h.cache) > cacheLimit {
		h.cache = h.cache[:cacheLimit]
	}
	h.mu.Unlock()
}

func (h *Store) appendToLocalLog(snap models.DataSnapshot) error {
	var log []models.DataSnapshot
	if _, err := h.local.Get(h.localKey(localstore.EntitySnapshots), &log); err != nil {
		return err
	}
	log = append([]models.DataSnapshot{snap}, log...)
	if len(log) > localLogLimit {
		log = log[:localLogLimit]
	}
	return h.local.Put(h.localKey(localstore.EntitySnapshots), log)
}

func (h *Store) enqueueOffline(snap models.DataSnapshot) error {
	var queue []models.DataSnapshot
	if _, err := h.local.Get(h.localKey(localstore.EntityOfflineQueue), &queue); err != nil {
		return err
	}
	queue = append(queue, snap)
	return h.local.Put(h.localKey(localstore.EntityOfflineQueue), queue)
}

// FlushOfflineQueue re-attempts queued snapshot writes. Snapshots that
// still fail stay queued. Returns the number flushed.
func (h *Store) FlushOfflineQueue(ctx context.Context) (int, error) {
	if !h.remote() {
		return 0, nil
	}

	var queue []models.DataSnapshot
	if _, err := h.local.Get(h.localKey(localstore.EntityOfflineQueue), &queue); err != nil {
		return 0, err
	}
	if len(queue) == 0 {
		return 0, nil
	}

	var remaining []models.DataSnapshot
	flushed := 0
	var lastErr error
	for i := range queue {
		queue[i].Metadata.SyncStatus = models.SnapshotSynced
		if err := h.repos.Snapshots.Insert(ctx, &queue[i]); err != nil {
			queue[i].Metadata.SyncStatus = models.SnapshotPending
			remaining = append(remaining, queue[i])
			lastErr = err
			continue
		}
		flushed++
	}

	if err := h.local.Put(h.localKey(localstore.EntityOfflineQueue), remaining); err != nil {
		return flushed, err
	}
	if lastErr != nil {
		return flushed, fmt.Errorf("failed to flush %d queued snapshots: %w", len(remaining), lastErr)
	}

	logger.Log.Info().
		Int("flushed", flushed).
		Str("user_hash", logger.HashUserID(h.session.UserID)).
		Msg("Offline snapshot queue flushed")
	return flushed, nil
}

// RefreshCache reloads the most-recent-100 history cache from storage.
func (h *Store) RefreshCache(ctx context.Context) error {
	snaps, err := h.History(ctx, repository.SnapshotFilter{Limit: cacheLimit})
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.cache = snaps
	h.mu.Unlock()
	return nil
}

// Cached returns a copy of the in-memory history cache, newest first.
func (h *Store) Cached() []models.DataSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.DataSnapshot, len(h.cache))
	copy(out, h.cache)
	return out
}
