package history

import (
	"context"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// ForceSync records a full-state snapshot and flushes the offline queue.
// Each forced sync is a fresh attempt; a previous error status does not
// block it.
func (h *Store) ForceSync(ctx context.Context) error {
	state, err := h.data.CurrentState(ctx)
	if err != nil {
		return err
	}

	if err := h.Record(ctx, models.OpBulkUpdate, models.EntityFullBackup, "", nil, state,
		"Forced full sync"); err != nil {
		return err
	}

	_, err = h.FlushOfflineQueue(ctx)
	return err
}

// AutoSyncLoop records a periodic full-state snapshot while a remote store
// is configured and the session is authenticated. Cancelled via ctx on
// session end.
func (h *Store) AutoSyncLoop(ctx context.Context, interval time.Duration) {
	if !h.remote() {
		logger.Log.Info().Msg("Auto-sync disabled: no remote session")
		return
	}

	logger.Log.Info().Dur("interval", interval).Msg("Auto-sync loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Auto-sync loop stopped")
			return
		case <-ticker.C:
			if err := h.ForceSync(ctx); err != nil {
				logger.Log.Error().
					Err(err).
					Str("user_hash", logger.HashUserID(h.session.UserID)).
					Msg("Auto-sync failed")
			}
		}
	}
}

// AutoBackupLoop checks at startup and then hourly whether today's
// automatic backup exists. Cancelled via ctx on session end.
func (h *Store) AutoBackupLoop(ctx context.Context, interval time.Duration) {
	logger.Log.Info().Dur("interval", interval).Msg("Auto-backup loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run one check immediately so a backup isn't skipped when the process
	// starts shortly before the next tick.
	if err := h.EnsureDailyBackup(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Startup auto-backup check failed")
	}

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Auto-backup loop stopped")
			return
		case <-ticker.C:
			if err := h.EnsureDailyBackup(ctx); err != nil {
				logger.Log.Error().Err(err).Msg("Auto-backup check failed")
			}
		}
	}
}
