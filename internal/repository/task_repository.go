package repository

import (
	"database/sql"

	"github.com/flowboard/flowboard-api/internal/database"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByPublicID finds a tenant's task by its public id token
func (r *GormTaskRepository) FindByPublicID(organizationID uint64, publicID string) (*models.Task, error) {
	var task models.Task
	err := r.db.
		Where("organization_id = ? AND public_id = ?", organizationID, publicID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindBySeq finds a board's task by its per-board sequence number
func (r *GormTaskRepository) FindBySeq(boardID, seq uint64) (*models.Task, error) {
	var task models.Task
	err := r.db.
		Where("board_id = ? AND seq = ?", boardID, seq).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Snapshot returns a board's non-archived tasks ordered by id, so the
// resolver's "first qualifying match" is stable across storages.
func (r *GormTaskRepository) Snapshot(boardID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("board_id = ? AND archived = ?", boardID, false).
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.organization_id = ?", filter.OrganizationID)

	if !filter.IncludeArchived {
		query = query.Where("tasks.archived = ?", false)
	}
	if filter.BoardID != nil {
		query = query.Where("tasks.board_id = ?", *filter.BoardID)
	}
	if filter.ColumnID != nil {
		query = query.Where("tasks.column_id = ?", *filter.ColumnID)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.DueBefore != nil {
		query = query.Where("tasks.due_date IS NOT NULL AND tasks.due_date < ?", *filter.DueBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.column_id ASC, tasks.position ASC, tasks.id ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// MaxPosition returns the highest ordering key in a column
func (r *GormTaskRepository) MaxPosition(columnID uint64) (float64, error) {
	var max sql.NullFloat64
	err := r.db.Model(&models.Task{}).
		Where("column_id = ? AND archived = ?", columnID, false).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Float64, nil
}

// NextSeq returns the next per-board sequence number
func (r *GormTaskRepository) NextSeq(boardID uint64) (uint64, error) {
	var max sql.NullInt64
	err := r.db.Model(&models.Task{}).
		Unscoped().
		Where("board_id = ?", boardID).
		Select("MAX(seq)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return uint64(max.Int64) + 1, nil
}
