package repository

import (
	"github.com/flowboard/flowboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLinkRepository is a GORM implementation of LinkRepository
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates a new LinkRepository
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &GormLinkRepository{db: db}
}

// Upsert inserts a link or refreshes the existing row keyed by LinkKey,
// so a task never collects duplicate links to the same external object
func (r *GormLinkRepository) Upsert(link *models.ExternalLink) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "link_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "url", "status", "updated_at"}),
		}).
		Create(link).Error
}

// ListByTask lists a task's external links
func (r *GormLinkRepository) ListByTask(taskID uint64) ([]models.ExternalLink, error) {
	var links []models.ExternalLink
	err := r.db.
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}
