package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/liwei/stride-api/internal/logger"
	"github.com/liwei/stride-api/internal/models"
)

func newTestStore(t *testing.T) (*Store, *Local) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	local, err := OpenLocal(path, logger.Nop())
	if err != nil {
		t.Fatalf("failed to open local backend: %v", err)
	}
	st := New(local, uuid.Nil, logger.Nop())
	if err := st.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	return st, local
}

func addTestGoal(t *testing.T, st *Store, name string) models.Goal {
	t.Helper()
	goal, err := st.AddGoal(models.Goal{
		Name:           name,
		Unit:           "books",
		TargetAmount:   12,
		Period:         models.PeriodYear,
		IncrementValue: 1,
	})
	if err != nil {
		t.Fatalf("failed to add goal %q: %v", name, err)
	}
	return goal
}

func TestCompletedAmountMatchesRecordSum(t *testing.T) {
	st, _ := newTestStore(t)
	goal := addTestGoal(t, st, "Read 12 books")

	values := []float64{1, 0.5, 2, 1, 3.5}
	var want float64
	for _, v := range values {
		if _, err := st.AddRecord(goal.ID, v); err != nil {
			t.Fatalf("failed to add record: %v", err)
		}
		want += v
	}

	var sum float64
	for _, r := range st.Records() {
		if r.GoalID == goal.ID {
			sum += r.Value
		}
	}
	if sum != want {
		t.Fatalf("record sum = %v, want %v", sum, want)
	}

	current := st.CurrentGoal()
	if current == nil {
		t.Fatal("expected a current goal")
	}
	if current.CompletedAmount != want {
		t.Errorf("completedAmount = %v, want %v", current.CompletedAmount, want)
	}
}

func TestReadTwelveBooksScenario(t *testing.T) {
	st, _ := newTestStore(t)
	goal := addTestGoal(t, st, "Read 12 books")

	for i := 0; i < 3; i++ {
		if _, err := st.AddRecord(goal.ID, 1); err != nil {
			t.Fatalf("failed to add record: %v", err)
		}
	}

	current := st.CurrentGoal()
	if current == nil || current.CompletedAmount != 3 {
		t.Fatalf("completedAmount = %v, want 3", current)
	}
	if got := len(st.CurrentGoalRecords()); got != 3 {
		t.Errorf("currentGoalRecords length = %d, want 3", got)
	}
	if got := st.TodayRecords(goal.ID); got != 3 {
		t.Errorf("todayRecords = %v, want 3", got)
	}
}

func TestArchiveRestoreRoundTrip(t *testing.T) {
	st, _ := newTestStore(t)
	goal := addTestGoal(t, st, "Run 100 km")

	archived, found, err := st.ArchiveGoal(goal.ID)
	if err != nil || !found {
		t.Fatalf("archive failed: found=%v err=%v", found, err)
	}
	if archived.Status != models.StatusArchived {
		t.Errorf("status = %q, want archived", archived.Status)
	}
	if archived.ArchivedAt == nil {
		t.Error("archivedAt should be set after archiving")
	}
	if st.CurrentGoal() != nil {
		t.Error("archived goal must not remain the current goal")
	}

	found, err = st.RestoreFromArchive(goal.ID)
	if err != nil || !found {
		t.Fatalf("restore failed: found=%v err=%v", found, err)
	}

	current := st.CurrentGoal()
	if current == nil {
		t.Fatal("restored goal should be current")
	}
	if current.Status != models.StatusActive {
		t.Errorf("status = %q, want active", current.Status)
	}
	if current.ArchivedAt != nil {
		t.Error("archivedAt should be cleared on restore")
	}
	if current.Name != goal.Name || current.TargetAmount != goal.TargetAmount {
		t.Error("restore should preserve goal fields")
	}
}

func TestArchiveIsIdempotent(t *testing.T) {
	st, _ := newTestStore(t)
	goal := addTestGoal(t, st, "Meditate")

	first, found, err := st.ArchiveGoal(goal.ID)
	if err != nil || !found {
		t.Fatalf("first archive failed: found=%v err=%v", found, err)
	}
	second, found, err := st.ArchiveGoal(goal.ID)
	if err != nil || !found {
		t.Fatalf("second archive failed: found=%v err=%v", found, err)
	}
	if second.Status != models.StatusArchived {
		t.Errorf("status = %q, want archived", second.Status)
	}
	if !second.ArchivedAt.Equal(*first.ArchivedAt) {
		t.Error("second archive must not move the archive timestamp")
	}
}

func TestArchiveNotFound(t *testing.T) {
	st, _ := newTestStore(t)
	if _, found, err := st.ArchiveGoal(uuid.New()); found || err != nil {
		t.Fatalf("archive of unknown id: found=%v err=%v, want soft failure", found, err)
	}
	if found, err := st.RestoreFromArchive(uuid.New()); found || err != nil {
		t.Fatalf("restore of unknown id: found=%v err=%v, want soft failure", found, err)
	}
}

func TestDeleteGoalCascadesToRecords(t *testing.T) {
	st, _ := newTestStore(t)
	keep := addTestGoal(t, st, "Keep me")
	doomed := addTestGoal(t, st, "Delete me")

	for i := 0; i < 3; i++ {
		if _, err := st.AddRecord(doomed.ID, 1); err != nil {
			t.Fatalf("failed to add record: %v", err)
		}
	}
	if _, err := st.AddRecord(keep.ID, 1); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}

	gone, removed, found, err := st.DeleteGoal(doomed.ID)
	if err != nil || !found {
		t.Fatalf("delete failed: found=%v err=%v", found, err)
	}
	if gone.ID != doomed.ID {
		t.Errorf("deleted goal id = %v, want %v", gone.ID, doomed.ID)
	}
	if len(removed) != 3 {
		t.Errorf("removed record snapshot length = %d, want 3", len(removed))
	}

	for _, g := range st.Goals() {
		if g.ID == doomed.ID {
			t.Error("deleted goal still present")
		}
	}
	for _, r := range st.Records() {
		if r.GoalID == doomed.ID {
			t.Error("record for deleted goal still present")
		}
	}
	if len(st.Records()) != 1 {
		t.Errorf("records length = %d, want 1", len(st.Records()))
	}
}

func TestRestoreGoalUndoesDelete(t *testing.T) {
	st, _ := newTestStore(t)
	goal := addTestGoal(t, st, "Undo me")
	if _, err := st.AddRecord(goal.ID, 2); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}

	snapshot, records, found, err := st.DeleteGoal(goal.ID)
	if err != nil || !found {
		t.Fatalf("delete failed: found=%v err=%v", found, err)
	}

	if !st.RestoreGoal(snapshot, records) {
		t.Fatal("restoreGoal reported failure")
	}

	current := st.CurrentGoal()
	if current == nil || current.ID != goal.ID {
		t.Fatal("restored goal should be current")
	}
	if current.CompletedAmount != 2 {
		t.Errorf("completedAmount = %v, want 2", current.CompletedAmount)
	}
	if got := len(st.CurrentGoalRecords()); got != 1 {
		t.Errorf("restored record count = %d, want 1", got)
	}
}

func TestCurrentGoalReassignmentOnArchive(t *testing.T) {
	st, _ := newTestStore(t)
	a := addTestGoal(t, st, "A")
	b := addTestGoal(t, st, "B")

	// AddGoal makes the latest goal current; move back to A.
	if !st.SetCurrentGoal(a.ID) {
		t.Fatal("failed to select goal A")
	}

	if _, found, err := st.ArchiveGoal(a.ID); err != nil || !found {
		t.Fatalf("archive failed: found=%v err=%v", found, err)
	}
	current := st.CurrentGoal()
	if current == nil || current.ID != b.ID {
		t.Fatalf("current goal = %v, want %v", current, b.ID)
	}

	if _, found, err := st.ArchiveGoal(b.ID); err != nil || !found {
		t.Fatalf("archive failed: found=%v err=%v", found, err)
	}
	if st.CurrentGoal() != nil {
		t.Error("current goal should be cleared when no active goals remain")
	}
}

func TestCurrentGoalRecordsTruncatedToSevenMostRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	local, err := OpenLocal(path, logger.Nop())
	if err != nil {
		t.Fatalf("failed to open local backend: %v", err)
	}

	goal, err := local.InsertGoal(uuid.Nil, models.Goal{Name: "G", TargetAmount: 10})
	if err != nil {
		t.Fatalf("failed to insert goal: %v", err)
	}

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		_, err := local.InsertRecord(uuid.Nil, models.Record{
			GoalID:    goal.ID,
			Value:     1,
			Timestamp: ts,
			Date:      ts.Format(models.DateLayout),
		})
		if err != nil {
			t.Fatalf("failed to insert record: %v", err)
		}
	}

	st := New(local, uuid.Nil, logger.Nop())
	if err := st.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}

	recent := st.CurrentGoalRecords()
	if len(recent) != 7 {
		t.Fatalf("currentGoalRecords length = %d, want 7", len(recent))
	}
	for i, r := range recent {
		want := base.Add(time.Duration(9-i) * time.Hour)
		if !r.Timestamp.Equal(want) {
			t.Errorf("record %d timestamp = %v, want %v", i, r.Timestamp, want)
		}
	}
}

func TestUpdateGoalUnknownIDIsNoop(t *testing.T) {
	st, _ := newTestStore(t)
	addTestGoal(t, st, "Only goal")

	name := "renamed"
	_, found, err := st.UpdateGoal(uuid.New(), models.GoalUpdate{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("update of unknown id should report not found")
	}
	if st.Goals()[0].Name != "Only goal" {
		t.Error("existing goal should be untouched")
	}
}

func TestUpdateGoalMergesSparseFields(t *testing.T) {
	st, _ := newTestStore(t)
	goal := addTestGoal(t, st, "Read 12 books")

	inc := 0.5
	updated, found, err := st.UpdateGoal(goal.ID, models.GoalUpdate{IncrementValue: &inc})
	if err != nil || !found {
		t.Fatalf("update failed: found=%v err=%v", found, err)
	}
	if updated.IncrementValue != 0.5 {
		t.Errorf("incrementValue = %v, want 0.5", updated.IncrementValue)
	}
	if updated.Name != goal.Name || updated.TargetAmount != goal.TargetAmount {
		t.Error("fields not named in the update must be preserved")
	}
}

func TestAddRecordUnknownGoalStillPersistsRecord(t *testing.T) {
	st, _ := newTestStore(t)
	addTestGoal(t, st, "Real goal")

	unknown := uuid.New()
	if _, err := st.AddRecord(unknown, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(st.Records()) != 1 {
		t.Fatalf("records length = %d, want 1", len(st.Records()))
	}
	if st.Goals()[0].CompletedAmount != 0 {
		t.Error("unrelated goal must not be incremented")
	}
}

func TestGoalStats(t *testing.T) {
	st, _ := newTestStore(t)
	goal := addTestGoal(t, st, "Stats goal")

	if _, err := st.AddRecord(goal.ID, 1); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}
	if _, err := st.AddRecord(goal.ID, 2); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}

	stats, found := st.GoalStats(goal.ID)
	if !found {
		t.Fatal("stats for existing goal should be found")
	}
	if stats.TotalRecords != 2 {
		t.Errorf("totalRecords = %d, want 2", stats.TotalRecords)
	}
	if stats.DaysWithRecords != 1 {
		t.Errorf("daysWithRecords = %d, want 1 (same day)", stats.DaysWithRecords)
	}
	if stats.CompletedAmount != 3 {
		t.Errorf("completedAmount = %v, want 3", stats.CompletedAmount)
	}
	if stats.LastRecordTime == nil {
		t.Error("lastRecordTime should be set")
	}

	if _, found := st.GoalStats(uuid.New()); found {
		t.Error("stats for unknown goal should report not found")
	}
}

func TestResetDataClearsEverything(t *testing.T) {
	st, local := newTestStore(t)
	goal := addTestGoal(t, st, "Reset me")
	if _, err := st.AddRecord(goal.ID, 1); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}
	if err := st.CompleteOnboarding(); err != nil {
		t.Fatalf("failed to complete onboarding: %v", err)
	}

	if err := st.ResetData(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if len(st.Goals()) != 0 || len(st.Records()) != 0 {
		t.Error("reset should clear goals and records")
	}
	if st.CurrentGoal() != nil || st.CurrentGoalID() != uuid.Nil {
		t.Error("reset should clear the current goal selection")
	}
	if st.OnboardingCompleted() {
		t.Error("reset should clear the onboarding flag")
	}

	// The backend must be empty too.
	fresh := New(local, uuid.Nil, logger.Nop())
	if err := fresh.Load(); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if len(fresh.Goals()) != 0 || len(fresh.Records()) != 0 || fresh.OnboardingCompleted() {
		t.Error("reset state should survive a reload")
	}
}

func TestCustomPeriodStoredAsGiven(t *testing.T) {
	st, local := newTestStore(t)

	// Validation is the caller's job: an inverted date range is
	// persisted exactly as provided.
	start := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	goal, err := st.AddGoal(models.Goal{
		Name:         "Backwards",
		TargetAmount: 5,
		Period:       models.PeriodCustom,
		StartDate:    &start,
		EndDate:      &end,
	})
	if err != nil {
		t.Fatalf("failed to add goal: %v", err)
	}

	fresh := New(local, uuid.Nil, logger.Nop())
	if err := fresh.Load(); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	got := fresh.Goals()[0]
	if got.ID != goal.ID {
		t.Fatalf("unexpected goal %v", got.ID)
	}
	if got.StartDate == nil || !got.StartDate.Equal(start) {
		t.Errorf("startDate = %v, want %v", got.StartDate, start)
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("endDate = %v, want %v", got.EndDate, end)
	}
}

func TestLoadSelectsFirstActiveGoal(t *testing.T) {
	st, local := newTestStore(t)
	a := addTestGoal(t, st, "A")
	b := addTestGoal(t, st, "B")
	if _, found, err := st.ArchiveGoal(a.ID); err != nil || !found {
		t.Fatalf("archive failed: found=%v err=%v", found, err)
	}

	fresh := New(local, uuid.Nil, logger.Nop())
	if err := fresh.Load(); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	current := fresh.CurrentGoal()
	if current == nil || current.ID != b.ID {
		t.Fatalf("current goal after load = %v, want %v", current, b.ID)
	}
	if !fresh.OnboardingCompleted() {
		t.Error("onboarding flag should have been persisted by AddGoal")
	}
}

func TestSetCurrentGoalRejectsArchived(t *testing.T) {
	st, _ := newTestStore(t)
	goal := addTestGoal(t, st, "Soon archived")
	if _, found, err := st.ArchiveGoal(goal.ID); err != nil || !found {
		t.Fatalf("archive failed: found=%v err=%v", found, err)
	}
	if st.SetCurrentGoal(goal.ID) {
		t.Error("an archived goal must never become the current selection")
	}
	if st.SetCurrentGoal(uuid.New()) {
		t.Error("an unknown goal must not become the current selection")
	}
}
