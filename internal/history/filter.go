package history

import (
	"context"
	"strings"

	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
)

// History queries the audit trail with the given filter, newest first. The
// remote path queries the database; the local path filters the on-disk log.
func (h *Store) History(ctx context.Context, filter repository.SnapshotFilter) ([]models.DataSnapshot, error) {
	if h.remote() {
		return h.repos.Snapshots.List(ctx, h.session.UserID, filter)
	}

	var log []models.DataSnapshot
	if _, err := h.local.Get(h.localKey(localstore.EntitySnapshots), &log); err != nil {
		return nil, err
	}

	var out []models.DataSnapshot
	for _, snap := range log {
		if matchesFilter(snap, filter) {
			out = append(out, snap)
			if filter.Limit > 0 && len(out) >= filter.Limit {
				break
			}
		}
	}
	return out, nil
}

// FilterCached applies a filter to the already-loaded cache, for instant UI
// response without a round trip.
func (h *Store) FilterCached(filter repository.SnapshotFilter) []models.DataSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []models.DataSnapshot
	for _, snap := range h.cache {
		if matchesFilter(snap, filter) {
			out = append(out, snap)
			if filter.Limit > 0 && len(out) >= filter.Limit {
				break
			}
		}
	}
	return out
}

// SearchCached free-text searches the cache: case-insensitive substring
// match against the change description and the serialized new data.
func (h *Store) SearchCached(term string) []models.DataSnapshot {
	return h.FilterCached(repository.SnapshotFilter{Search: term})
}

func matchesFilter(snap models.DataSnapshot, filter repository.SnapshotFilter) bool {
	if !filter.From.IsZero() && snap.Timestamp.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && snap.Timestamp.After(filter.To) {
		return false
	}
	if filter.EntityType != "" && snap.EntityType != filter.EntityType {
		return false
	}
	if filter.Operation != "" && snap.Operation != filter.Operation {
		return false
	}
	if filter.EntityID != "" && snap.EntityID != filter.EntityID {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(snap.ChangeDescription), needle) &&
			!strings.Contains(strings.ToLower(string(snap.NewData)), needle) {
			return false
		}
	}
	return true
}
