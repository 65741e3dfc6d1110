// Package store implements the finance data store: the single source of
// truth for transactions, goals and user settings. Every operation has a
// remote-database path and a local-fallback path; the fallback is selected
// whenever no authenticated session exists or no database is configured.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
)

// ErrNotFound is returned when an update targets an entity outside the
// session's scope.
var ErrNotFound = repository.ErrNotFound

// DefaultPageSize is the transaction page size used when callers pass 0.
const DefaultPageSize = 50

// Session identifies the owner of a store instance. Authenticated gates the
// database path only; local keys are namespaced by UserID whenever one is
// known, so a user degraded to local-only mode still writes to their own
// namespace.
type Session struct {
	UserID        string
	Authenticated bool
}

// Recorder receives one call per mutation for the audit trail. Implemented
// by the history store; a nil recorder disables auditing.
type Recorder interface {
	Record(ctx context.Context, operation, entityType, entityID string, previous, next any, description string) error
}

// Repos bundles the remote repositories. All nil in local-only mode.
type Repos struct {
	Transactions *repository.TransactionRepository
	Goals        *repository.GoalRepository
	Settings     *repository.SettingsRepository
}

// Store owns the in-memory caches for one session. The caches must only be
// mutated through Store methods.
type Store struct {
	session  Session
	repos    Repos
	local    *localstore.Store
	recorder Recorder

	mu           sync.RWMutex
	transactions []models.Transaction
	goals        []models.Goal
	settings     *models.UserSettings
	totalRemote  int
	loadedPages  int
	hasMore      bool
	lastErr      string
}

// New creates a store for one session. repos may be the zero value when no
// database is configured.
func New(session Session, repos Repos, local *localstore.Store) *Store {
	return &Store{
		session: session,
		repos:   repos,
		local:   local,
	}
}

// SetRecorder attaches the audit recorder. Called during wiring, before the
// store is used.
func (s *Store) SetRecorder(r Recorder) { s.recorder = r }

// Session returns the session this store serves.
func (s *Store) Session() Session { return s.session }

// remote reports whether operations should use the database path.
func (s *Store) remote() bool {
	return s.repos.Transactions != nil && s.session.Authenticated
}

// LastError returns the message of the most recent failed operation, or ""
// when the last operation succeeded.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// fail records and returns an operation error.
func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
	return err
}

func (s *Store) clearErr() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// record forwards a mutation to the audit recorder. Recorder failures are
// logged, never propagated: the mutation itself already succeeded.
func (s *Store) record(ctx context.Context, operation, entityType, entityID string, previous, next any, description string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, operation, entityType, entityID, previous, next, description); err != nil {
		logger.Log.Warn().
			Err(err).
			Str("operation", operation).
			Str("entity_type", entityType).
			Str("user_hash", logger.HashUserID(s.session.UserID)).
			Msg("Failed to record audit snapshot")
	}
}

func (s *Store) localKey(entity string) string {
	return localstore.Key(entity, s.session.UserID)
}

// localID builds a timestamp-based id for entities created on the local
// fallback path. Remote ids are server-generated UUIDs.
func localID() string {
	return fmt.Sprintf("local-%d", time.Now().UnixNano())
}

// sortNewestFirst orders transactions by (date desc, time desc, created
// desc): the in-memory list invariant.
func sortNewestFirst(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		if txs[i].TimeOfDay != txs[j].TimeOfDay {
			return txs[i].TimeOfDay > txs[j].TimeOfDay
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

// CurrentState returns a point-in-time copy of the session's full state,
// fetched from the persistence layer. Used by backups and exports.
func (s *Store) CurrentState(ctx context.Context) (*models.FullState, error) {
	if s.remote() {
		txs, err := s.repos.Transactions.ListAll(ctx, s.session.UserID)
		if err != nil {
			return nil, s.fail(err)
		}
		goals, err := s.repos.Goals.ListByUser(ctx, s.session.UserID)
		if err != nil {
			return nil, s.fail(err)
		}
		settings, err := s.repos.Settings.Get(ctx, s.session.UserID)
		if err != nil {
			return nil, s.fail(err)
		}
		if settings == nil {
			settings = models.DefaultSettings(s.session.UserID)
		}
		return &models.FullState{Transactions: txs, Goals: goals, Settings: settings}, nil
	}

	state := &models.FullState{}
	if _, err := s.local.Get(s.localKey(localstore.EntityTransactions), &state.Transactions); err != nil {
		return nil, s.fail(err)
	}
	if _, err := s.local.Get(s.localKey(localstore.EntityGoals), &state.Goals); err != nil {
		return nil, s.fail(err)
	}
	found, err := s.local.Get(s.localKey(localstore.EntitySettings), &state.Settings)
	if err != nil {
		return nil, s.fail(err)
	}
	if !found {
		state.Settings = models.DefaultSettings(s.session.UserID)
	}
	sortNewestFirst(state.Transactions)
	return state, nil
}

// ReplaceState overwrites the session's entire persisted state. Callers
// must Reload afterwards; the in-memory caches are stale until then.
func (s *Store) ReplaceState(ctx context.Context, state *models.FullState) error {
	if state.Settings == nil {
		state.Settings = models.DefaultSettings(s.session.UserID)
	}

	if s.remote() {
		if err := s.repos.Transactions.ReplaceAll(ctx, s.session.UserID, state.Transactions); err != nil {
			return s.fail(err)
		}
		if err := s.repos.Goals.ReplaceAll(ctx, s.session.UserID, state.Goals); err != nil {
			return s.fail(err)
		}
		state.Settings.UserID = s.session.UserID
		if err := s.repos.Settings.Upsert(ctx, state.Settings); err != nil {
			return s.fail(err)
		}
		s.clearErr()
		return nil
	}

	if err := s.local.Put(s.localKey(localstore.EntityTransactions), state.Transactions); err != nil {
		return s.fail(err)
	}
	if err := s.local.Put(s.localKey(localstore.EntityGoals), state.Goals); err != nil {
		return s.fail(err)
	}
	if err := s.local.Put(s.localKey(localstore.EntitySettings), state.Settings); err != nil {
		return s.fail(err)
	}
	s.clearErr()
	return nil
}

// ApplyEntityPatch re-applies one recorded mutation to the persisted state:
// insert-or-replace for create/update, removal for delete. Settings and
// full-backup payloads replace wholesale. Used by snapshot restores; callers
// must Reload afterwards.
func (s *Store) ApplyEntityPatch(ctx context.Context, entityType, operation, entityID string, payload json.RawMessage) error {
	state, err := s.CurrentState(ctx)
	if err != nil {
		return err
	}

	switch entityType {
	case models.EntityTransaction:
		var tx models.Transaction
		if operation != models.OpDelete {
			if err := json.Unmarshal(payload, &tx); err != nil {
				return s.fail(fmt.Errorf("failed to decode transaction payload: %w", err))
			}
			if entityID == "" {
				entityID = tx.ID
			}
		}
		state.Transactions = patchTransactionList(state.Transactions, operation, entityID, tx)
	case models.EntityGoal:
		var goal models.Goal
		if operation != models.OpDelete {
			if err := json.Unmarshal(payload, &goal); err != nil {
				return s.fail(fmt.Errorf("failed to decode goal payload: %w", err))
			}
			if entityID == "" {
				entityID = goal.ID
			}
		}
		state.Goals = patchGoalList(state.Goals, operation, entityID, goal)
	case models.EntitySettings:
		var settings models.UserSettings
		if err := json.Unmarshal(payload, &settings); err != nil {
			return s.fail(fmt.Errorf("failed to decode settings payload: %w", err))
		}
		state.Settings = &settings
	case models.EntityFullBackup:
		var full models.FullState
		if err := json.Unmarshal(payload, &full); err != nil {
			return s.fail(fmt.Errorf("failed to decode full state payload: %w", err))
		}
		state = &full
	default:
		return s.fail(fmt.Errorf("unknown entity type %q", entityType))
	}

	return s.ReplaceState(ctx, state)
}

func patchTransactionList(txs []models.Transaction, operation, id string, tx models.Transaction) []models.Transaction {
	switch operation {
	case models.OpDelete:
		out := txs[:0]
		for _, t := range txs {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	default:
		for i := range txs {
			if txs[i].ID == id {
				txs[i] = tx
				return txs
			}
		}
		return append([]models.Transaction{tx}, txs...)
	}
}

func patchGoalList(goals []models.Goal, operation, id string, goal models.Goal) []models.Goal {
	switch operation {
	case models.OpDelete:
		out := goals[:0]
		for _, g := range goals {
			if g.ID != id {
				out = append(out, g)
			}
		}
		return out
	default:
		for i := range goals {
			if goals[i].ID == id {
				goals[i] = goal
				return goals
			}
		}
		return append([]models.Goal{goal}, goals...)
	}
}

// Reload discards every in-memory cache and re-fetches settings, goals and
// the first transaction page. This is the restore contract: after a restore
// all caches are invalid and must be re-read from storage.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.transactions = nil
	s.goals = nil
	s.settings = nil
	s.totalRemote = 0
	s.loadedPages = 0
	s.hasMore = false
	s.mu.Unlock()

	if _, err := s.LoadSettings(ctx); err != nil {
		return err
	}
	if _, err := s.LoadGoals(ctx); err != nil {
		return err
	}
	if _, err := s.LoadTransactions(ctx, 0, DefaultPageSize); err != nil {
		return err
	}
	return nil
}
