package store

import (
	"github.com/google/uuid"
	"github.com/liwei/stride-api/internal/models"
	"gorm.io/gorm"
)

// Remote is the table-store variant of the persistence backend, scoped
// by user id. A nil scope means no authenticated identity: loads return
// empty collections and mutations are rejected by row scoping.
type Remote struct {
	db *gorm.DB
}

func NewRemote(db *gorm.DB) *Remote {
	return &Remote{db: db}
}

func (r *Remote) LoadGoals(scope uuid.UUID) ([]models.Goal, error) {
	if scope == uuid.Nil {
		return nil, nil
	}
	var goals []models.Goal
	err := r.db.Where("user_id = ?", scope).Order("created_at DESC").Find(&goals).Error
	return goals, err
}

func (r *Remote) LoadRecords(scope uuid.UUID) ([]models.Record, error) {
	if scope == uuid.Nil {
		return nil, nil
	}
	var records []models.Record
	err := r.db.Where("user_id = ?", scope).Order("timestamp DESC").Find(&records).Error
	return records, err
}

func (r *Remote) InsertGoal(scope uuid.UUID, goal models.Goal) (models.Goal, error) {
	goal.UserID = scope
	if goal.Status == "" {
		goal.Status = models.StatusActive
	}
	if err := r.db.Create(&goal).Error; err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (r *Remote) UpdateGoal(scope uuid.UUID, goal models.Goal) error {
	goal.UserID = scope
	res := r.db.Model(&models.Goal{}).
		Where("id = ? AND user_id = ?", goal.ID, scope).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(goal)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *Remote) DeleteGoal(scope uuid.UUID, id uuid.UUID) error {
	return r.db.Where("id = ? AND user_id = ?", id, scope).Delete(&models.Goal{}).Error
}

func (r *Remote) InsertRecord(scope uuid.UUID, record models.Record) (models.Record, error) {
	record.UserID = scope
	if err := r.db.Create(&record).Error; err != nil {
		return models.Record{}, err
	}
	return record, nil
}

func (r *Remote) DeleteRecordsForGoal(scope uuid.UUID, goalID uuid.UUID) error {
	return r.db.Where("goal_id = ? AND user_id = ?", goalID, scope).Delete(&models.Record{}).Error
}

func (r *Remote) Reset(scope uuid.UUID) error {
	if scope == uuid.Nil {
		return nil
	}
	if err := r.db.Where("user_id = ?", scope).Delete(&models.Record{}).Error; err != nil {
		return err
	}
	return r.db.Where("user_id = ?", scope).Delete(&models.Goal{}).Error
}
