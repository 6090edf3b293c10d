package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liwei/stride-api/internal/logger"
	"github.com/liwei/stride-api/internal/models"
)

// Storage keys, matching the serialized shapes persisted by the app.
const (
	keyGoals      = "goals"
	keyRecords    = "records"
	keyOnboarding = "onboardingCompleted"
)

// Local is the file-backed key-value variant of the persistence
// backend: one JSON array per fixed key, single user, scope ignored.
// Corrupt content is logged and treated as empty, never fatal.
type Local struct {
	mu   sync.Mutex
	path string
	data map[string]string
	log  *logger.Logger
}

func OpenLocal(path string, log *logger.Logger) (*Local, error) {
	l := &Local{path: path, data: map[string]string{}, log: log}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &l.data); err != nil {
			log.Warn("local data file is corrupt, starting empty", "path", path, "error", err)
			l.data = map[string]string{}
		}
	}
	return l, nil
}

func (l *Local) save() error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	raw, err := json.MarshalIndent(l.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, raw, 0o600)
}

func (l *Local) loadGoalList() []models.Goal {
	raw, ok := l.data[keyGoals]
	if !ok {
		return nil
	}
	var goals []models.Goal
	if err := json.Unmarshal([]byte(raw), &goals); err != nil {
		l.log.Warn("malformed goals blob, treating as empty", "error", err)
		return nil
	}
	// Older data may predate the status field.
	for i := range goals {
		if goals[i].Status == "" {
			goals[i].Status = models.StatusActive
		}
	}
	return goals
}

func (l *Local) loadRecordList() []models.Record {
	raw, ok := l.data[keyRecords]
	if !ok {
		return nil
	}
	var records []models.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		l.log.Warn("malformed records blob, treating as empty", "error", err)
		return nil
	}
	return records
}

func (l *Local) saveGoalList(goals []models.Goal) error {
	raw, err := json.Marshal(goals)
	if err != nil {
		return err
	}
	l.data[keyGoals] = string(raw)
	return l.save()
}

func (l *Local) saveRecordList(records []models.Record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	l.data[keyRecords] = string(raw)
	return l.save()
}

func (l *Local) LoadGoals(scope uuid.UUID) ([]models.Goal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.loadGoalList(), nil
}

func (l *Local) LoadRecords(scope uuid.UUID) ([]models.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.loadRecordList(), nil
}

func (l *Local) InsertGoal(scope uuid.UUID, goal models.Goal) (models.Goal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	if goal.Status == "" {
		goal.Status = models.StatusActive
	}
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now

	goals := append(l.loadGoalList(), goal)
	return goal, l.saveGoalList(goals)
}

func (l *Local) UpdateGoal(scope uuid.UUID, goal models.Goal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	goals := l.loadGoalList()
	for i := range goals {
		if goals[i].ID == goal.ID {
			goal.UpdatedAt = time.Now()
			goals[i] = goal
			return l.saveGoalList(goals)
		}
	}
	return ErrGoalNotFound
}

func (l *Local) DeleteGoal(scope uuid.UUID, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	goals := l.loadGoalList()
	kept := goals[:0]
	for _, g := range goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	return l.saveGoalList(kept)
}

func (l *Local) InsertRecord(scope uuid.UUID, record models.Record) (models.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if record.Date == "" {
		record.Date = record.Timestamp.Format(models.DateLayout)
	}

	// Newest first, matching load order.
	records := append([]models.Record{record}, l.loadRecordList()...)
	return record, l.saveRecordList(records)
}

func (l *Local) DeleteRecordsForGoal(scope uuid.UUID, goalID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.loadRecordList()
	kept := records[:0]
	for _, r := range records {
		if r.GoalID != goalID {
			kept = append(kept, r)
		}
	}
	return l.saveRecordList(kept)
}

func (l *Local) OnboardingCompleted(scope uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.data[keyOnboarding] == "true", nil
}

func (l *Local) SetOnboardingCompleted(scope uuid.UUID, done bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if done {
		l.data[keyOnboarding] = "true"
	} else {
		l.data[keyOnboarding] = "false"
	}
	return l.save()
}

func (l *Local) Reset(scope uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.data, keyGoals)
	delete(l.data, keyRecords)
	delete(l.data, keyOnboarding)
	return l.save()
}

// Export returns the stored blobs verbatim, defaulting absent keys.
func (l *Local) Export(scope uuid.UUID) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		Goals:               json.RawMessage("[]"),
		Records:             json.RawMessage("[]"),
		OnboardingCompleted: "false",
	}
	if raw, ok := l.data[keyGoals]; ok {
		snap.Goals = json.RawMessage(raw)
	}
	if raw, ok := l.data[keyRecords]; ok {
		snap.Records = json.RawMessage(raw)
	}
	if raw, ok := l.data[keyOnboarding]; ok {
		snap.OnboardingCompleted = raw
	}
	return snap, nil
}
