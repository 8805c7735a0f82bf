package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/flowboard/flowboard-api/internal/command"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTitleEmpty    = errors.New("title cannot be empty")
	ErrInvalidColumn = errors.New("column does not belong to the task's board")
)

// TaskService handles task reads and field updates. Mutations that the
// audit trail cares about (column, priority, archived state) go through
// the executor so every path records the same activity.
type TaskService struct {
	taskRepo  repository.TaskRepository
	boardRepo repository.BoardRepository
	executor  *CommandService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, boardRepo repository.BoardRepository, executor *CommandService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		boardRepo: boardRepo,
		executor:  executor,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	OrganizationID  uint64
	BoardID         *uint64
	ColumnID        *uint64
	Priority        *models.TaskPriority
	AssigneeID      *uint64
	IncludeArchived bool
	Page            int
	PageSize        int
}

// ListTasks returns tasks matching the filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		OrganizationID:  input.OrganizationID,
		BoardID:         input.BoardID,
		ColumnID:        input.ColumnID,
		Priority:        input.Priority,
		AssigneeID:      input.AssigneeID,
		IncludeArchived: input.IncludeArchived,
		Page:            input.Page,
		PageSize:        input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Column", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	ColumnID     *uint64
	AssigneeID   *uint64
	Actor        models.Actor
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.AssigneeID != nil {
		task.AssigneeID = input.AssigneeID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if input.Priority != nil {
		if err := s.executor.SetPriority(task, *input.Priority, input.Actor); err != nil {
			return nil, err
		}
	}
	if input.ColumnID != nil && *input.ColumnID != task.ColumnID {
		board, err := s.boardRepo.FindWithColumns(task.BoardID)
		if err != nil {
			return nil, fmt.Errorf("failed to load board: %w", err)
		}
		var target *models.Column
		for i := range board.Columns {
			if board.Columns[i].ID == *input.ColumnID {
				target = &board.Columns[i]
				break
			}
		}
		if target == nil {
			return nil, ErrInvalidColumn
		}
		from := columnTitle(board.Columns, task.ColumnID)
		if err := s.executor.MoveTask(task, target, from, input.Actor); err != nil {
			return nil, err
		}
	}

	return s.taskRepo.FindByID(task.ID, "Column", "Assignee")
}

// ArchiveTask archives a task through the executor
func (s *TaskService) ArchiveTask(taskID uint64, actor models.Actor) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.executor.ArchiveTask(task, actor, time.Now()); err != nil {
		return nil, err
	}
	return task, nil
}

// FindByReference resolves a free-text or exact-id reference within a
// board's non-archived snapshot.
func (s *TaskService) FindByReference(boardID uint64, ref string) (*models.Task, error) {
	snapshot, err := s.taskRepo.Snapshot(boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task snapshot: %w", err)
	}
	return command.ResolveTask(ref, snapshot)
}
