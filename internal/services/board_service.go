package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/repository"
	"github.com/flowboard/flowboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrBoardNotFound     = errors.New("board not found")
	ErrBoardNameRequired = errors.New("board name is required")
)

// defaultColumns is the column set new boards start with. Titles are
// free text; the resolver infers their meaning from keywords.
var defaultColumns = []struct {
	title string
	color string
}{
	{"Backlog", "#94a3b8"},
	{"In Progress", "#60a5fa"},
	{"Review", "#f59e0b"},
	{"Done", "#34d399"},
}

// BoardService handles board business logic
type BoardService struct {
	boardRepo repository.BoardRepository
}

// NewBoardService creates a new BoardService
func NewBoardService(boardRepo repository.BoardRepository) *BoardService {
	return &BoardService{boardRepo: boardRepo}
}

// CreateBoardInput represents input for creating a board
type CreateBoardInput struct {
	OrganizationID uint64
	Name           string
	// Prefix overrides the derived reference prefix, e.g. "FLOW".
	Prefix string
}

// CreateBoard creates a board with the default column set
func (s *BoardService) CreateBoard(input CreateBoardInput) (*models.Board, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrBoardNameRequired
	}

	prefix := strings.ToUpper(strings.TrimSpace(input.Prefix))
	if prefix == "" {
		prefix = utils.BoardPrefix(name)
	}

	board := &models.Board{
		OrganizationID: input.OrganizationID,
		Name:           name,
		Prefix:         prefix,
	}
	for i, col := range defaultColumns {
		board.Columns = append(board.Columns, models.Column{
			Title:    col.title,
			Position: i,
			Color:    col.color,
		})
	}

	if err := s.boardRepo.Create(board); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	return board, nil
}

// GetBoard returns a board with its ordered columns
func (s *BoardService) GetBoard(id uint64) (*models.Board, error) {
	board, err := s.boardRepo.FindWithColumns(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}
	return board, nil
}

// ListBoards returns a tenant's boards
func (s *BoardService) ListBoards(organizationID uint64) ([]models.Board, error) {
	boards, err := s.boardRepo.ListByOrganization(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}
