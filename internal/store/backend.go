package store

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/liwei/stride-api/internal/models"
)

var ErrGoalNotFound = errors.New("goal not found")

// Backend is the persistence contract the store depends on. Scope is
// the user/session partition the data lives under; uuid.Nil means "not
// authenticated" and load operations return empty collections without
// error. The local file backend ignores scope entirely.
type Backend interface {
	LoadGoals(scope uuid.UUID) ([]models.Goal, error)
	LoadRecords(scope uuid.UUID) ([]models.Record, error)
	// InsertGoal returns the stored form with generated id/timestamps.
	InsertGoal(scope uuid.UUID, goal models.Goal) (models.Goal, error)
	UpdateGoal(scope uuid.UUID, goal models.Goal) error
	DeleteGoal(scope uuid.UUID, id uuid.UUID) error
	InsertRecord(scope uuid.UUID, record models.Record) (models.Record, error)
	DeleteRecordsForGoal(scope uuid.UUID, goalID uuid.UUID) error
}

// FlagBackend persists the onboarding-completed flag separately from
// the collections. Only the local variant implements it; the remote
// variant derives the flag from goal presence.
type FlagBackend interface {
	OnboardingCompleted(scope uuid.UUID) (bool, error)
	SetOnboardingCompleted(scope uuid.UUID, done bool) error
}

// Resetter clears all persisted data for a scope in one call.
type Resetter interface {
	Reset(scope uuid.UUID) error
}

// Snapshot is the backup export shape: the raw serialized blobs under
// their storage keys, with no transformation.
type Snapshot struct {
	Goals               json.RawMessage `json:"goals"`
	Records             json.RawMessage `json:"records"`
	OnboardingCompleted string          `json:"onboardingCompleted"`
}

// Exporter produces a verbatim backup snapshot. Implemented by the
// local variant, where the stored blobs exist as-is.
type Exporter interface {
	Export(scope uuid.UUID) (Snapshot, error)
}
