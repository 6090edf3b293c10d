package store

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/liwei/stride-api/internal/logger"
	"github.com/liwei/stride-api/internal/models"
)

// Store owns the in-memory representation of one scope's goals and
// progress records and keeps it synchronized with a Backend. It is the
// single source of truth for derived views (current goal, recent
// records, active/archived partitions, statistics).
//
// Mutations are pessimistic: the backend write happens first and the
// in-memory state is touched only after it succeeds, so a failed
// operation leaves the visible state unchanged. The store holds no
// internal locking; callers serialize access (the HTTP layer builds
// one store per request).
type Store struct {
	backend Backend
	scope   uuid.UUID
	log     *logger.Logger

	goals               []models.Goal
	records             []models.Record
	currentGoalID       uuid.UUID
	onboardingCompleted bool
	loaded              bool
}

func New(backend Backend, scope uuid.UUID, log *logger.Logger) *Store {
	return &Store{backend: backend, scope: scope, log: log}
}

// Load pulls all goals and records for the scope from the backend and
// initializes the current-goal selection and onboarding flag. A nil
// scope yields an empty, loaded store without error.
func (s *Store) Load() error {
	goals, err := s.backend.LoadGoals(s.scope)
	if err != nil {
		return err
	}
	records, err := s.backend.LoadRecords(s.scope)
	if err != nil {
		return err
	}

	s.goals = goals
	s.records = records

	s.currentGoalID = uuid.Nil
	for _, g := range s.goals {
		if !g.Archived() {
			s.currentGoalID = g.ID
			break
		}
	}

	if fb, ok := s.backend.(FlagBackend); ok {
		done, err := fb.OnboardingCompleted(s.scope)
		if err != nil {
			return err
		}
		s.onboardingCompleted = done
	} else {
		s.onboardingCompleted = len(s.goals) > 0
	}

	s.loaded = true
	return nil
}

func (s *Store) Loaded() bool { return s.loaded }

func (s *Store) findGoal(id uuid.UUID) int {
	for i := range s.goals {
		if s.goals[i].ID == id {
			return i
		}
	}
	return -1
}

// firstActive returns the id of the first active goal by list order,
// or uuid.Nil.
func (s *Store) firstActive() uuid.UUID {
	for _, g := range s.goals {
		if !g.Archived() {
			return g.ID
		}
	}
	return uuid.Nil
}

// AddGoal persists a new goal, appends it, makes it the current goal
// and marks onboarding complete.
func (s *Store) AddGoal(goal models.Goal) (models.Goal, error) {
	if goal.Status == "" {
		goal.Status = models.StatusActive
	}
	stored, err := s.backend.InsertGoal(s.scope, goal)
	if err != nil {
		return models.Goal{}, err
	}

	s.goals = append(s.goals, stored)
	s.currentGoalID = stored.ID
	s.onboardingCompleted = true
	if fb, ok := s.backend.(FlagBackend); ok {
		if err := fb.SetOnboardingCompleted(s.scope, true); err != nil {
			s.log.Warn("failed to persist onboarding flag", "error", err)
		}
	}
	return stored, nil
}

// UpdateGoal merges the non-nil fields of update into the matching
// goal. Unknown id is a no-op reported via ok=false.
func (s *Store) UpdateGoal(id uuid.UUID, update models.GoalUpdate) (models.Goal, bool, error) {
	i := s.findGoal(id)
	if i < 0 {
		return models.Goal{}, false, nil
	}

	updated := s.goals[i]
	update.Apply(&updated)
	if err := s.backend.UpdateGoal(s.scope, updated); err != nil {
		return models.Goal{}, true, err
	}
	s.goals[i] = updated
	return updated, true, nil
}

// AddRecord logs a progress increment: the record is created with the
// current timestamp and derived date, persisted, and the owning goal's
// completed amount is bumped by value. A record against an unknown
// goal id is still persisted; only the goal increment is skipped.
func (s *Store) AddRecord(goalID uuid.UUID, value float64) (models.Record, error) {
	record := models.NewRecord(goalID, value, time.Now())
	stored, err := s.backend.InsertRecord(s.scope, record)
	if err != nil {
		return models.Record{}, err
	}
	s.records = append([]models.Record{stored}, s.records...)

	if i := s.findGoal(goalID); i >= 0 {
		updated := s.goals[i]
		updated.CompletedAmount += value
		if err := s.backend.UpdateGoal(s.scope, updated); err != nil {
			return stored, err
		}
		s.goals[i] = updated
	}
	return stored, nil
}

// ArchiveGoal soft-deletes a goal, preserving its records. If it was
// the current goal the selection moves to the first remaining active
// goal or is cleared. Archiving an already archived goal is a no-op.
func (s *Store) ArchiveGoal(id uuid.UUID) (models.Goal, bool, error) {
	i := s.findGoal(id)
	if i < 0 {
		return models.Goal{}, false, nil
	}
	if s.goals[i].Archived() {
		return s.goals[i], true, nil
	}

	now := time.Now()
	updated := s.goals[i]
	updated.Status = models.StatusArchived
	updated.ArchivedAt = &now
	if err := s.backend.UpdateGoal(s.scope, updated); err != nil {
		return models.Goal{}, true, err
	}
	s.goals[i] = updated

	if s.currentGoalID == id {
		s.currentGoalID = s.firstActive()
	}
	return updated, true, nil
}

// RestoreFromArchive reactivates an archived goal, clears its archive
// timestamp and makes it the current goal.
func (s *Store) RestoreFromArchive(id uuid.UUID) (bool, error) {
	i := s.findGoal(id)
	if i < 0 {
		return false, nil
	}

	updated := s.goals[i]
	updated.Status = models.StatusActive
	updated.ArchivedAt = nil
	if err := s.backend.UpdateGoal(s.scope, updated); err != nil {
		return true, err
	}
	s.goals[i] = updated
	s.currentGoalID = id
	return true, nil
}

// DeleteGoal hard-deletes a goal and all of its records, returning the
// removed snapshot so callers can offer undo via RestoreGoal.
func (s *Store) DeleteGoal(id uuid.UUID) (models.Goal, []models.Record, bool, error) {
	i := s.findGoal(id)
	if i < 0 {
		return models.Goal{}, nil, false, nil
	}
	goal := s.goals[i]

	var removed []models.Record
	for _, r := range s.records {
		if r.GoalID == id {
			removed = append(removed, r)
		}
	}

	if err := s.backend.DeleteRecordsForGoal(s.scope, id); err != nil {
		return models.Goal{}, nil, true, err
	}
	if err := s.backend.DeleteGoal(s.scope, id); err != nil {
		return models.Goal{}, nil, true, err
	}

	s.goals = append(s.goals[:i], s.goals[i+1:]...)
	kept := s.records[:0]
	for _, r := range s.records {
		if r.GoalID != id {
			kept = append(kept, r)
		}
	}
	s.records = kept

	if s.currentGoalID == id {
		s.currentGoalID = s.firstActive()
	}
	return goal, removed, true, nil
}

// RestoreGoal re-inserts a previously deleted goal and its records
// (the undo-delete path). Best effort: failures are logged and
// reported as a boolean result.
func (s *Store) RestoreGoal(goal models.Goal, records []models.Record) bool {
	goal.Status = models.StatusActive
	goal.ArchivedAt = nil
	stored, err := s.backend.InsertGoal(s.scope, goal)
	if err != nil {
		s.log.Error("failed to restore goal", "goal", goal.ID, "error", err)
		return false
	}
	s.goals = append(s.goals, stored)

	for _, r := range records {
		r.GoalID = stored.ID
		rec, err := s.backend.InsertRecord(s.scope, r)
		if err != nil {
			s.log.Error("failed to restore record", "record", r.ID, "error", err)
			return false
		}
		s.records = append(s.records, rec)
	}

	s.currentGoalID = stored.ID
	return true
}

// GoalStats summarizes a goal's history: days elapsed since creation,
// distinct days with activity, total records, most recent record time
// and the current completed amount.
func (s *Store) GoalStats(id uuid.UUID) (models.GoalStats, bool) {
	i := s.findGoal(id)
	if i < 0 {
		return models.GoalStats{}, false
	}
	goal := s.goals[i]

	stats := models.GoalStats{
		DaysSinceCreation: int(time.Since(goal.CreatedAt).Hours() / 24),
		CompletedAmount:   goal.CompletedAmount,
	}

	days := map[string]struct{}{}
	for _, r := range s.records {
		if r.GoalID != id {
			continue
		}
		stats.TotalRecords++
		days[r.Date] = struct{}{}
		if stats.LastRecordTime == nil || r.Timestamp.After(*stats.LastRecordTime) {
			t := r.Timestamp
			stats.LastRecordTime = &t
		}
	}
	stats.DaysWithRecords = len(days)
	return stats, true
}

// ResetData clears all goals, records, the current-goal selection and
// the onboarding flag, in memory and in the backend.
func (s *Store) ResetData() error {
	if rs, ok := s.backend.(Resetter); ok {
		if err := rs.Reset(s.scope); err != nil {
			return err
		}
	} else {
		for _, g := range s.goals {
			if err := s.backend.DeleteRecordsForGoal(s.scope, g.ID); err != nil {
				return err
			}
			if err := s.backend.DeleteGoal(s.scope, g.ID); err != nil {
				return err
			}
		}
	}
	if fb, ok := s.backend.(FlagBackend); ok {
		if err := fb.SetOnboardingCompleted(s.scope, false); err != nil {
			return err
		}
	}

	s.goals = nil
	s.records = nil
	s.currentGoalID = uuid.Nil
	s.onboardingCompleted = false
	return nil
}

// CompleteOnboarding marks the first-run flow as finished.
func (s *Store) CompleteOnboarding() error {
	s.onboardingCompleted = true
	if fb, ok := s.backend.(FlagBackend); ok {
		return fb.SetOnboardingCompleted(s.scope, true)
	}
	return nil
}

func (s *Store) OnboardingCompleted() bool { return s.onboardingCompleted }

func (s *Store) CurrentGoalID() uuid.UUID { return s.currentGoalID }

// SetCurrentGoal switches the current selection. Only active goals can
// become current.
func (s *Store) SetCurrentGoal(id uuid.UUID) bool {
	i := s.findGoal(id)
	if i < 0 || s.goals[i].Archived() {
		return false
	}
	s.currentGoalID = id
	return true
}

// CurrentGoal returns the current selection, or nil if none is set or
// the selected goal is archived.
func (s *Store) CurrentGoal() *models.Goal {
	if s.currentGoalID == uuid.Nil {
		return nil
	}
	i := s.findGoal(s.currentGoalID)
	if i < 0 || s.goals[i].Archived() {
		return nil
	}
	g := s.goals[i]
	return &g
}

// CurrentGoalRecords returns the current goal's records, most recent
// first, truncated to the last 7. Ties keep insertion order.
func (s *Store) CurrentGoalRecords() []models.Record {
	out := make([]models.Record, 0, 7)
	for _, r := range s.records {
		if r.GoalID == s.currentGoalID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > 7 {
		out = out[:7]
	}
	return out
}

func (s *Store) Goals() []models.Goal { return s.goals }

func (s *Store) Records() []models.Record { return s.records }

func (s *Store) ActiveGoals() []models.Goal {
	out := []models.Goal{}
	for _, g := range s.goals {
		if !g.Archived() {
			out = append(out, g)
		}
	}
	return out
}

func (s *Store) ArchivedGoals() []models.Goal {
	out := []models.Goal{}
	for _, g := range s.goals {
		if g.Archived() {
			out = append(out, g)
		}
	}
	return out
}

// TodayRecords sums the values recorded for a goal on today's
// calendar date.
func (s *Store) TodayRecords(goalID uuid.UUID) float64 {
	today := time.Now().Format(models.DateLayout)
	var sum float64
	for _, r := range s.records {
		if r.GoalID == goalID && r.Date == today {
			sum += r.Value
		}
	}
	return sum
}

// Backup produces the export snapshot. The local backend returns its
// raw blobs verbatim; otherwise the snapshot is built from the loaded
// collections.
func (s *Store) Backup() (Snapshot, error) {
	if ex, ok := s.backend.(Exporter); ok {
		return ex.Export(s.scope)
	}

	goalList := s.goals
	if goalList == nil {
		goalList = []models.Goal{}
	}
	recordList := s.records
	if recordList == nil {
		recordList = []models.Record{}
	}
	goals, err := json.Marshal(goalList)
	if err != nil {
		return Snapshot{}, err
	}
	records, err := json.Marshal(recordList)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Goals: goals, Records: records, OnboardingCompleted: "false"}
	if s.onboardingCompleted {
		snap.OnboardingCompleted = "true"
	}
	return snap, nil
}
