package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gitlab.com/yelinaung/finance-tracker/internal/database"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// GoalRepository handles goal database operations.
type GoalRepository struct {
	db database.PGXDB
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(db database.PGXDB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, user_id, title, description, target_amount, current_amount, deadline,
	category, priority, status, currency, target_category, created_at, updated_at`

// Create adds a new goal. The id is generated server-side.
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO goals (id, user_id, title, description, target_amount, current_amount, deadline,
			category, priority, status, currency, target_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, goal.ID, goal.UserID, goal.Title, goal.Description, goal.TargetAmount, goal.CurrentAmount,
		goal.Deadline, goal.Category, goal.Priority, goal.Status, goal.Currency, goal.TargetCategory,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// ListByUser retrieves all goals for a user, newest first.
func (r *GoalRepository) ListByUser(ctx context.Context, userID string) ([]models.Goal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Title, &g.Description, &g.TargetAmount, &g.CurrentAmount,
			&g.Deadline, &g.Category, &g.Priority, &g.Status, &g.Currency, &g.TargetCategory,
			&g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// Update replaces all mutable fields of a goal. Returns ErrNotFound when the
// id does not exist within the user's scope.
func (r *GoalRepository) Update(ctx context.Context, goal *models.Goal) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE goals SET
			title = $3,
			description = $4,
			target_amount = $5,
			current_amount = $6,
			deadline = $7,
			category = $8,
			priority = $9,
			status = $10,
			currency = $11,
			target_category = $12,
			updated_at = NOW()
		WHERE user_id = $1 AND id = $2
	`, goal.UserID, goal.ID, goal.Title, goal.Description, goal.TargetAmount, goal.CurrentAmount,
		goal.Deadline, goal.Category, goal.Priority, goal.Status, goal.Currency, goal.TargetCategory)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a goal. Deleting a missing id is a no-op.
func (r *GoalRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM goals WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

// ReplaceAll swaps the full goal set for a user. Used by restores.
// Runs inside a transaction when the underlying db can begin one.
func (r *GoalRepository) ReplaceAll(ctx context.Context, userID string, goals []models.Goal) error {
	return inTx(ctx, r.db, func(db database.PGXDB) error {
		if _, err := db.Exec(ctx, `DELETE FROM goals WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to clear goals: %w", err)
		}
		scoped := GoalRepository{db: db}
		for i := range goals {
			goals[i].UserID = userID
			if err := scoped.Create(ctx, &goals[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
