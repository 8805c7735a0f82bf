package repository

import (
	"github.com/flowboard/flowboard-api/internal/models"
	"gorm.io/gorm"
)

// GormBoardRepository is a GORM implementation of BoardRepository
type GormBoardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &GormBoardRepository{db: db}
}

// Create creates a board together with its columns
func (r *GormBoardRepository) Create(board *models.Board) error {
	return r.db.Create(board).Error
}

// FindByID finds a board by ID with optional preloading
func (r *GormBoardRepository) FindByID(id uint64, preload ...string) (*models.Board, error) {
	var board models.Board
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&board, id).Error; err != nil {
		return nil, err
	}

	return &board, nil
}

// FindWithColumns finds a board with columns ordered by position
func (r *GormBoardRepository) FindWithColumns(id uint64) (*models.Board, error) {
	var board models.Board
	err := r.db.
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("columns.position ASC")
		}).
		First(&board, id).Error
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// ListByOrganization lists a tenant's boards
func (r *GormBoardRepository) ListByOrganization(organizationID uint64) ([]models.Board, error) {
	var boards []models.Board
	err := r.db.
		Where("organization_id = ?", organizationID).
		Order("id ASC").
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}
