package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/finance-tracker/internal/database"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// RestorePointRepository handles backup storage.
type RestorePointRepository struct {
	db database.PGXDB
}

// NewRestorePointRepository creates a new RestorePointRepository.
func NewRestorePointRepository(db database.PGXDB) *RestorePointRepository {
	return &RestorePointRepository{db: db}
}

// Insert stores a new restore point.
func (r *RestorePointRepository) Insert(ctx context.Context, point *models.DataRestorePoint) error {
	if point.ID == "" {
		point.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO restore_points (id, user_id, timestamp, description, data_size, version, is_auto_backup, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, point.ID, point.UserID, point.Timestamp, point.Description, point.DataSize,
		point.Version, point.IsAutoBackup, point.Data)
	if err != nil {
		return fmt.Errorf("failed to insert restore point: %w", err)
	}
	return nil
}

// List retrieves a user's restore points, newest first, without payloads.
func (r *RestorePointRepository) List(ctx context.Context, userID string) ([]models.DataRestorePoint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, timestamp, description, data_size, version, is_auto_backup
		FROM restore_points
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query restore points: %w", err)
	}
	defer rows.Close()

	var points []models.DataRestorePoint
	for rows.Next() {
		var p models.DataRestorePoint
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Timestamp, &p.Description, &p.DataSize, &p.Version, &p.IsAutoBackup,
		); err != nil {
			return nil, fmt.Errorf("failed to scan restore point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restore points: %w", err)
	}
	return points, nil
}

// GetByID retrieves a restore point including its payload.
func (r *RestorePointRepository) GetByID(ctx context.Context, userID, id string) (*models.DataRestorePoint, error) {
	var p models.DataRestorePoint
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, timestamp, description, data_size, version, is_auto_backup, data
		FROM restore_points WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(
		&p.ID, &p.UserID, &p.Timestamp, &p.Description, &p.DataSize, &p.Version, &p.IsAutoBackup, &p.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restore point: %w", err)
	}
	return &p, nil
}

// LatestAuto retrieves the most recent automatic backup, or (nil, nil) when
// none exists.
func (r *RestorePointRepository) LatestAuto(ctx context.Context, userID string) (*models.DataRestorePoint, error) {
	var p models.DataRestorePoint
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, timestamp, description, data_size, version, is_auto_backup
		FROM restore_points
		WHERE user_id = $1 AND is_auto_backup = TRUE
		ORDER BY timestamp DESC
		LIMIT 1
	`, userID).Scan(&p.ID, &p.UserID, &p.Timestamp, &p.Description, &p.DataSize, &p.Version, &p.IsAutoBackup)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest auto backup: %w", err)
	}
	return &p, nil
}

// Delete removes a restore point. Returns ErrNotFound when the id does not
// exist within the user's scope.
func (r *RestorePointRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM restore_points WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete restore point: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
