package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/finance-tracker/internal/database"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// SnapshotFilter narrows a history query. Zero values mean "no constraint".
type SnapshotFilter struct {
	From       time.Time
	To         time.Time
	EntityType string
	Operation  string
	EntityID   string
	// Search is a case-insensitive substring match against the change
	// description and the serialized new data.
	Search string
	Limit  int
}

// SnapshotRepository handles the append-only audit log. There is
// deliberately no update statement: snapshots are immutable once written.
type SnapshotRepository struct {
	db database.PGXDB
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db database.PGXDB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotColumns = `id, user_id, timestamp, version, operation, entity_type, entity_id,
	previous_data, new_data, change_description, device_info, size_bytes, checksum, sync_status`

// Insert appends a snapshot to the audit log.
func (r *SnapshotRepository) Insert(ctx context.Context, snap *models.DataSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	device, err := json.Marshal(snap.Device)
	if err != nil {
		return fmt.Errorf("failed to encode device info: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO data_snapshots (id, user_id, timestamp, version, operation, entity_type, entity_id,
			previous_data, new_data, change_description, device_info, size_bytes, checksum, sync_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, snap.ID, snap.UserID, snap.Timestamp, snap.Version, snap.Operation, snap.EntityType,
		snap.EntityID, snap.PreviousData, snap.NewData, snap.ChangeDescription, device,
		snap.Metadata.SizeBytes, snap.Metadata.Checksum, snap.Metadata.SyncStatus)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// GetByID retrieves a snapshot scoped to a user.
func (r *SnapshotRepository) GetByID(ctx context.Context, userID, id string) (*models.DataSnapshot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM data_snapshots WHERE user_id = $1 AND id = $2
	`, userID, id)

	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return snap, nil
}

// List retrieves snapshots matching the filter, newest first.
func (r *SnapshotRepository) List(ctx context.Context, userID string, filter SnapshotFilter) ([]models.DataSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM data_snapshots WHERE user_id = $1`
	args := []any{userID}

	appendClause := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND %s $%d", clause, len(args))
	}

	if !filter.From.IsZero() {
		appendClause("timestamp >=", filter.From)
	}
	if !filter.To.IsZero() {
		appendClause("timestamp <=", filter.To)
	}
	if filter.EntityType != "" {
		appendClause("entity_type =", filter.EntityType)
	}
	if filter.Operation != "" {
		appendClause("operation =", filter.Operation)
	}
	if filter.EntityID != "" {
		appendClause("entity_id =", filter.EntityID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern)
		query += fmt.Sprintf(
			" AND (LOWER(change_description) LIKE $%d OR LOWER(COALESCE(new_data::text, '')) LIKE $%d)",
			len(args), len(args))
	}

	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.DataSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snaps, nil
}

// Recent retrieves the newest snapshots for the in-memory history cache.
func (r *SnapshotRepository) Recent(ctx context.Context, userID string, limit int) ([]models.DataSnapshot, error) {
	return r.List(ctx, userID, SnapshotFilter{Limit: limit})
}

// DeleteOlderThan removes snapshots older than the cutoff, retaining
// full-backup snapshots indefinitely. Returns the number of deleted rows.
func (r *SnapshotRepository) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM data_snapshots
		WHERE user_id = $1 AND timestamp < $2 AND entity_type <> $3
	`, userID, cutoff, models.EntityFullBackup)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanSnapshot(row interface{ Scan(dest ...any) error }) (*models.DataSnapshot, error) {
	var snap models.DataSnapshot
	var device []byte
	if err := row.Scan(
		&snap.ID, &snap.UserID, &snap.Timestamp, &snap.Version, &snap.Operation,
		&snap.EntityType, &snap.EntityID, &snap.PreviousData, &snap.NewData,
		&snap.ChangeDescription, &device, &snap.Metadata.SizeBytes,
		&snap.Metadata.Checksum, &snap.Metadata.SyncStatus,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(device, &snap.Device); err != nil {
		return nil, fmt.Errorf("failed to decode device info: %w", err)
	}
	return &snap, nil
}
