package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// GoalPatch carries a partial goal update. Nil fields are left unchanged.
type GoalPatch struct {
	Title          *string
	Description    *string
	TargetAmount   *decimal.Decimal
	CurrentAmount  *decimal.Decimal
	Deadline       *time.Time
	Category       *string
	Priority       *string
	Status         *string
	Currency       *string
	TargetCategory *string
}

func (p GoalPatch) apply(g *models.Goal) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.Deadline != nil {
		g.Deadline = *p.Deadline
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	if p.Priority != nil {
		g.Priority = *p.Priority
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
	if p.Currency != nil {
		g.Currency = *p.Currency
	}
	if p.TargetCategory != nil {
		g.TargetCategory = *p.TargetCategory
	}
}

// Goals returns a copy of the in-memory goal list.
func (s *Store) Goals() []models.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

// AddGoal persists a new goal. Amount validation is the caller's concern.
func (s *Store) AddGoal(ctx context.Context, goal *models.Goal) error {
	goal.UserID = s.session.UserID
	if goal.Status == "" {
		goal.Status = models.GoalActive
	}
	if goal.Priority == "" {
		goal.Priority = models.PriorityMedium
	}
	if goal.Currency == "" {
		goal.Currency = s.profileCurrency()
	}

	if s.remote() {
		if err := s.repos.Goals.Create(ctx, goal); err != nil {
			return s.fail(err)
		}
	} else {
		now := time.Now()
		goal.ID = localID()
		goal.CreatedAt = now
		goal.UpdatedAt = now
		if err := s.persistLocalGoals(append([]models.Goal{*goal}, s.Goals()...)); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.goals = append([]models.Goal{*goal}, s.goals...)
	s.mu.Unlock()
	s.clearErr()

	s.record(ctx, models.OpCreate, models.EntityGoal, goal.ID, nil, goal,
		fmt.Sprintf("Added goal %q", goal.Title))
	return nil
}

// UpdateGoal merges a partial update into an existing goal. Returns
// ErrNotFound when the id is not in the session's scope.
func (s *Store) UpdateGoal(ctx context.Context, id string, patch GoalPatch) error {
	s.mu.RLock()
	idx := -1
	for i := range s.goals {
		if s.goals[i].ID == id {
			idx = i
			break
		}
	}
	var previous models.Goal
	if idx >= 0 {
		previous = s.goals[idx]
	}
	s.mu.RUnlock()

	if idx < 0 {
		return s.fail(fmt.Errorf("goal %s: %w", id, ErrNotFound))
	}

	updated := previous
	patch.apply(&updated)
	updated.UpdatedAt = time.Now()

	if s.remote() {
		if err := s.repos.Goals.Update(ctx, &updated); err != nil {
			return s.fail(err)
		}
	} else {
		goals := s.Goals()
		goals[idx] = updated
		if err := s.persistLocalGoals(goals); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if idx < len(s.goals) && s.goals[idx].ID == id {
		s.goals[idx] = updated
	}
	s.mu.Unlock()
	s.clearErr()

	s.record(ctx, models.OpUpdate, models.EntityGoal, id, previous, updated,
		fmt.Sprintf("Updated goal %q", updated.Title))
	return nil
}

// DeleteGoal removes a goal. Deleting an unknown id is a no-op.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.RLock()
	idx := -1
	for i := range s.goals {
		if s.goals[i].ID == id {
			idx = i
			break
		}
	}
	var previous models.Goal
	if idx >= 0 {
		previous = s.goals[idx]
	}
	s.mu.RUnlock()

	if idx < 0 {
		return nil
	}

	if s.remote() {
		if err := s.repos.Goals.Delete(ctx, s.session.UserID, id); err != nil {
			return s.fail(err)
		}
	} else {
		goals := s.Goals()
		goals = append(goals[:idx], goals[idx+1:]...)
		if err := s.persistLocalGoals(goals); err != nil {
			return err
		}
	}

	s.mu.Lock()
	for i := range s.goals {
		if s.goals[i].ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.clearErr()

	s.record(ctx, models.OpDelete, models.EntityGoal, id, previous, nil,
		fmt.Sprintf("Deleted goal %q", previous.Title))
	return nil
}

// CompleteGoal marks a goal completed, snapping its current amount to the
// target. Completion is always an explicit action: over-achieved goals stay
// active until the user completes them.
func (s *Store) CompleteGoal(ctx context.Context, id string) error {
	s.mu.RLock()
	var target decimal.Decimal
	found := false
	for i := range s.goals {
		if s.goals[i].ID == id {
			target = s.goals[i].TargetAmount
			found = true
			break
		}
	}
	s.mu.RUnlock()
	if !found {
		return s.fail(fmt.Errorf("goal %s: %w", id, ErrNotFound))
	}

	status := models.GoalCompleted
	return s.UpdateGoal(ctx, id, GoalPatch{Status: &status, CurrentAmount: &target})
}

// PauseGoal transitions an active goal to paused.
func (s *Store) PauseGoal(ctx context.Context, id string) error {
	status := models.GoalPaused
	return s.UpdateGoal(ctx, id, GoalPatch{Status: &status})
}

// ResumeGoal transitions a paused goal back to active.
func (s *Store) ResumeGoal(ctx context.Context, id string) error {
	status := models.GoalActive
	return s.UpdateGoal(ctx, id, GoalPatch{Status: &status})
}

// LoadGoals fetches the session's goals into the in-memory cache.
func (s *Store) LoadGoals(ctx context.Context) ([]models.Goal, error) {
	var goals []models.Goal

	if s.remote() {
		var err error
		goals, err = s.repos.Goals.ListByUser(ctx, s.session.UserID)
		if err != nil {
			return nil, s.fail(err)
		}
	} else {
		if _, err := s.local.Get(s.localKey(localstore.EntityGoals), &goals); err != nil {
			return nil, s.fail(err)
		}
	}

	s.mu.Lock()
	s.goals = append([]models.Goal(nil), goals...)
	s.mu.Unlock()
	s.clearErr()

	return goals, nil
}

func (s *Store) persistLocalGoals(goals []models.Goal) error {
	if err := s.local.Put(s.localKey(localstore.EntityGoals), goals); err != nil {
		return s.fail(err)
	}
	return nil
}
