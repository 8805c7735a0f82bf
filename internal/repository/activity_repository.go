package repository

import (
	"github.com/flowboard/flowboard-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// Create appends an activity record. The actor kind is normalized at
// this boundary so internal logic only compares canonical values.
func (r *GormActivityRepository) Create(activity *models.Activity) error {
	activity.ActorKind = models.NormalizeActorKind(string(activity.ActorKind))
	return r.db.Create(activity).Error
}

// ListByTask lists a task's activity, newest first
func (r *GormActivityRepository) ListByTask(taskID uint64, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.
		Where("task_id = ?", taskID).
		Order("id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// ListByBoard lists a board's activity, newest first
func (r *GormActivityRepository) ListByBoard(boardID uint64, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.
		Where("board_id = ?", boardID).
		Order("id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
