package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// autoBackupDescription is stored on automatic daily backups.
const autoBackupDescription = "Automatic daily backup"

// CreateBackup serializes the entire current state into a restore point. An
// empty description marks the backup as automatic.
func (h *Store) CreateBackup(ctx context.Context, description string) (*models.DataRestorePoint, error) {
	state, err := h.data.CurrentState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture state for backup: %w", err)
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup state: %w", err)
	}

	point := &models.DataRestorePoint{
		ID:           uuid.NewString(),
		UserID:       h.session.UserID,
		Timestamp:    time.Now(),
		Description:  description,
		DataSize:     len(payload),
		Version:      h.nextVersion(),
		IsAutoBackup: description == "",
		Data:         payload,
	}
	if point.IsAutoBackup {
		point.Description = autoBackupDescription
	}

	if h.remote() {
		if err := h.repos.RestorePoints.Insert(ctx, point); err != nil {
			return nil, err
		}
	} else {
		var points []models.DataRestorePoint
		if _, err := h.local.Get(h.localKey(localstore.EntityBackups), &points); err != nil {
			return nil, err
		}
		points = append([]models.DataRestorePoint{*point}, points...)
		if err := h.local.Put(h.localKey(localstore.EntityBackups), points); err != nil {
			return nil, err
		}
	}

	if err := h.Record(ctx, models.OpCreate, models.EntityFullBackup, point.ID, nil, state,
		fmt.Sprintf("Created backup %q", point.Description)); err != nil {
		logger.Log.Warn().Err(err).Msg("Backup created but audit snapshot failed")
	}

	logger.Log.Info().
		Str("backup_id", point.ID).
		Bool("auto", point.IsAutoBackup).
		Int("data_size", point.DataSize).
		Str("user_hash", logger.HashUserID(h.session.UserID)).
		Msg("Backup created")
	return point, nil
}

// Backups lists the session's restore points, newest first, without
// payloads.
func (h *Store) Backups(ctx context.Context) ([]models.DataRestorePoint, error) {
	if h.remote() {
		return h.repos.RestorePoints.List(ctx, h.session.UserID)
	}

	var points []models.DataRestorePoint
	if _, err := h.local.Get(h.localKey(localstore.EntityBackups), &points); err != nil {
		return nil, err
	}
	for i := range points {
		points[i].Data = nil
	}
	return points, nil
}

func (h *Store) getBackup(ctx context.Context, id string) (*models.DataRestorePoint, error) {
	if h.remote() {
		return h.repos.RestorePoints.GetByID(ctx, h.session.UserID, id)
	}

	var points []models.DataRestorePoint
	if _, err := h.local.Get(h.localKey(localstore.EntityBackups), &points); err != nil {
		return nil, err
	}
	for i := range points {
		if points[i].ID == id {
			return &points[i], nil
		}
	}
	return nil, ErrNotFound
}

// RestoreFromBackup replaces the entire transaction/goal/settings state
// with the backup's payload, records the restore for auditability, then
// reloads the data store: all in-memory caches are invalidated and
// re-fetched.
func (h *Store) RestoreFromBackup(ctx context.Context, backupID string) error {
	point, err := h.getBackup(ctx, backupID)
	if err != nil {
		return err
	}

	var state models.FullState
	if err := json.Unmarshal(point.Data, &state); err != nil {
		return fmt.Errorf("failed to decode backup payload: %w", err)
	}

	if err := h.data.ReplaceState(ctx, &state); err != nil {
		return fmt.Errorf("failed to apply backup state: %w", err)
	}

	if err := h.Record(ctx, models.OpBulkUpdate, models.EntityFullBackup, point.ID, nil, &state,
		fmt.Sprintf("Restored from backup %q", point.Description)); err != nil {
		logger.Log.Warn().Err(err).Msg("Restore applied but audit snapshot failed")
	}

	return h.data.Reload(ctx)
}

// RestoreFromSnapshot re-applies one recorded mutation: insert-or-replace
// for create/update, removal for delete, wholesale replacement for settings
// and full-backup snapshots. The referenced snapshot itself is never
// modified.
func (h *Store) RestoreFromSnapshot(ctx context.Context, snapshotID string) error {
	var snap *models.DataSnapshot
	if h.remote() {
		var err error
		snap, err = h.repos.Snapshots.GetByID(ctx, h.session.UserID, snapshotID)
		if err != nil {
			return err
		}
	} else {
		var log []models.DataSnapshot
		if _, err := h.local.Get(h.localKey(localstore.EntitySnapshots), &log); err != nil {
			return err
		}
		for i := range log {
			if log[i].ID == snapshotID {
				snap = &log[i]
				break
			}
		}
		if snap == nil {
			return ErrNotFound
		}
	}

	if err := h.data.ApplyEntityPatch(ctx, snap.EntityType, snap.Operation, snap.EntityID, snap.NewData); err != nil {
		return fmt.Errorf("failed to apply snapshot: %w", err)
	}

	if err := h.Record(ctx, models.OpBulkUpdate, snap.EntityType, snap.EntityID, nil, json.RawMessage(snap.NewData),
		fmt.Sprintf("Restored from snapshot %s", snap.ID)); err != nil {
		logger.Log.Warn().Err(err).Msg("Snapshot restore applied but audit snapshot failed")
	}

	return h.data.Reload(ctx)
}

// DeleteBackup hard-deletes a manual restore point. Automatic backups are
// protected.
func (h *Store) DeleteBackup(ctx context.Context, backupID string) error {
	point, err := h.getBackup(ctx, backupID)
	if err != nil {
		return err
	}
	if point.IsAutoBackup {
		return ErrAutoBackupDelete
	}

	if h.remote() {
		return h.repos.RestorePoints.Delete(ctx, h.session.UserID, backupID)
	}

	var points []models.DataRestorePoint
	if _, err := h.local.Get(h.localKey(localstore.EntityBackups), &points); err != nil {
		return err
	}
	remaining := points[:0]
	for _, p := range points {
		if p.ID != backupID {
			remaining = append(remaining, p)
		}
	}
	return h.local.Put(h.localKey(localstore.EntityBackups), remaining)
}

// CleanupOldVersions deletes snapshots older than the cutoff. Full-backup
// snapshots are retained indefinitely. Returns the number deleted.
func (h *Store) CleanupOldVersions(ctx context.Context, olderThanDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	if h.remote() {
		return h.repos.Snapshots.DeleteOlderThan(ctx, h.session.UserID, cutoff)
	}

	var log []models.DataSnapshot
	if _, err := h.local.Get(h.localKey(localstore.EntitySnapshots), &log); err != nil {
		return 0, err
	}
	kept := log[:0]
	deleted := 0
	for _, snap := range log {
		if snap.Timestamp.Before(cutoff) && snap.EntityType != models.EntityFullBackup {
			deleted++
			continue
		}
		kept = append(kept, snap)
	}
	if deleted == 0 {
		return 0, nil
	}
	if err := h.local.Put(h.localKey(localstore.EntitySnapshots), kept); err != nil {
		return 0, err
	}
	return deleted, nil
}

// latestAutoBackup returns the newest automatic backup, or nil.
func (h *Store) latestAutoBackup(ctx context.Context) (*models.DataRestorePoint, error) {
	if h.remote() {
		return h.repos.RestorePoints.LatestAuto(ctx, h.session.UserID)
	}

	var points []models.DataRestorePoint
	if _, err := h.local.Get(h.localKey(localstore.EntityBackups), &points); err != nil {
		return nil, err
	}
	var latest *models.DataRestorePoint
	for i := range points {
		if !points[i].IsAutoBackup {
			continue
		}
		if latest == nil || points[i].Timestamp.After(latest.Timestamp) {
			latest = &points[i]
		}
	}
	return latest, nil
}

// EnsureDailyBackup creates an automatic backup unless one already exists
// for the current UTC calendar day. The UTC day is used deliberately so the
// schedule is stable for users who change timezones between sessions.
func (h *Store) EnsureDailyBackup(ctx context.Context) error {
	latest, err := h.latestAutoBackup(ctx)
	if err != nil {
		return err
	}

	today := time.Now().UTC().Format("2006-01-02")
	if latest != nil && latest.Timestamp.UTC().Format("2006-01-02") == today {
		return nil
	}

	_, err = h.CreateBackup(ctx, "")
	return err
}
