package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/flowboard/flowboard-api/internal/command"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/repository"
	"github.com/flowboard/flowboard-api/internal/utils"
	"go.uber.org/zap"
)

var (
	ErrUnknownCommand      = errors.New("could not understand the command")
	ErrTitleRequired       = errors.New("a title is required to create a task")
	ErrDueDateRequired     = errors.New("could not read a due date from the command")
	ErrTaskAlreadyArchived = errors.New("task is already archived")
	ErrBoardHasNoColumns   = errors.New("board has no columns")
)

// CommandService executes parsed commands against the task store. It is
// the single mutation path shared by the command bar and the automation
// engine: resolve, mutate, record provenance.
type CommandService struct {
	taskRepo     repository.TaskRepository
	boardRepo    repository.BoardRepository
	activityRepo repository.ActivityRepository
}

// NewCommandService creates a new CommandService
func NewCommandService(taskRepo repository.TaskRepository, boardRepo repository.BoardRepository, activityRepo repository.ActivityRepository) *CommandService {
	return &CommandService{
		taskRepo:     taskRepo,
		boardRepo:    boardRepo,
		activityRepo: activityRepo,
	}
}

// ExecuteInput represents one raw command against a board
type ExecuteInput struct {
	OrganizationID uint64
	BoardID        uint64
	Actor          models.Actor
	Text           string
	// Now anchors relative date parsing; zero means time.Now().
	Now time.Time
}

// CommandResult is the outcome of executing one command. Command is
// always populated, including on failure, so callers can show what was
// understood.
type CommandResult struct {
	Command command.ParsedCommand
	Action  string
	Task    *models.Task
	Tasks   []models.Task
	Message string
}

// Execute interprets and applies one command. On error the returned
// result still carries the parsed command for the caller's echo.
func (s *CommandService) Execute(input ExecuteInput) (*CommandResult, error) {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	frags := command.ExtractFragments(input.Text, now)
	parsed := command.Classify(input.Text, frags)
	result := &CommandResult{Command: parsed}

	switch parsed.Type {
	case command.TypeCreate:
		task, err := s.CreateTask(CreateTaskInput{
			OrganizationID: input.OrganizationID,
			BoardID:        input.BoardID,
			Title:          parsed.Params.Title,
			Priority:       parsed.Params.Priority,
			DueDate:        parsed.Params.DueDate,
			Labels:         parsed.Params.Labels,
			Column:         parsed.Params.Column,
			Actor:          input.Actor,
		})
		if err != nil {
			return result, err
		}
		result.Action = "created"
		result.Task = task
		result.Message = fmt.Sprintf("Created %q (%s)", task.Title, task.Priority)
		return result, nil

	case command.TypeMove:
		return s.executeMove(input, parsed, result)

	case command.TypeComplete:
		return s.executeComplete(input, parsed, result)

	case command.TypePriority:
		return s.executePriority(input, parsed, result)

	case command.TypeDue:
		return s.executeDue(input, parsed, result)

	case command.TypeArchive:
		return s.executeArchive(input, parsed, result, now)

	case command.TypeQuery:
		return s.executeQuery(input, parsed, result, now)

	default:
		return result, fmt.Errorf("%w: %q", ErrUnknownCommand, input.Text)
	}
}

// CreateTaskInput represents input for creating a task through the
// executor (command bar or automation action).
type CreateTaskInput struct {
	OrganizationID uint64
	BoardID        uint64
	Title          string
	Description    string
	Priority       models.TaskPriority
	DueDate        *time.Time
	Labels         []string
	// Column is the requested bucket name; empty means the board's
	// todo-family column, falling back to its first column.
	Column string
	Actor  models.Actor
}

// CreateTask inserts a task at the bottom of the target column.
func (s *CommandService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	board, err := s.boardRepo.FindWithColumns(input.BoardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}

	var col *models.Column
	if input.Column != "" {
		col, err = command.ResolveColumn(input.Column, board.Columns)
		if err != nil {
			return nil, err
		}
	} else {
		if col = command.ResolveDefaultColumn(board.Columns); col == nil {
			return nil, ErrBoardHasNoColumns
		}
	}

	if !input.Priority.Valid() {
		input.Priority = models.PriorityMedium
	}

	publicID, err := utils.GenerateTaskID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task id: %w", err)
	}
	seq, err := s.taskRepo.NextSeq(board.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sequence number: %w", err)
	}
	maxPos, err := s.taskRepo.MaxPosition(col.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute position: %w", err)
	}

	task := &models.Task{
		PublicID:       publicID,
		Seq:            seq,
		Title:          input.Title,
		Description:    input.Description,
		BoardID:        board.ID,
		ColumnID:       col.ID,
		OrganizationID: input.OrganizationID,
		Position:       maxPos + 1,
		Priority:       input.Priority,
		DueDate:        input.DueDate,
		Labels:         input.Labels,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.appendActivity(task, models.ActivityCreated, fmt.Sprintf("created in %q", col.Title), input.Actor)
	return task, nil
}

// MoveTask moves a task into a target column and records the change.
// Moving a task to the column it is already in is a no-op.
func (s *CommandService) MoveTask(task *models.Task, target *models.Column, from string, actor models.Actor) error {
	if task.ColumnID == target.ID {
		return nil
	}

	maxPos, err := s.taskRepo.MaxPosition(target.ID)
	if err != nil {
		return fmt.Errorf("failed to compute position: %w", err)
	}

	task.ColumnID = target.ID
	task.Position = maxPos + 1
	if err := s.taskRepo.Update(task); err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}

	s.appendActivity(task, models.ActivityMoved, fmt.Sprintf("from %q to %q", from, target.Title), actor)
	return nil
}

// SetPriority updates a task's priority and records the change.
func (s *CommandService) SetPriority(task *models.Task, priority models.TaskPriority, actor models.Actor) error {
	if !priority.Valid() {
		return fmt.Errorf("invalid priority %q", priority)
	}
	before := task.Priority
	if before == priority {
		return nil
	}

	task.Priority = priority
	if err := s.taskRepo.Update(task); err != nil {
		return fmt.Errorf("failed to update priority: %w", err)
	}

	s.appendActivity(task, models.ActivityPriorityChanged, fmt.Sprintf("%s to %s", before, priority), actor)
	return nil
}

// SetDueDate updates a task's due date.
func (s *CommandService) SetDueDate(task *models.Task, due *time.Time) error {
	task.DueDate = due
	if err := s.taskRepo.Update(task); err != nil {
		return fmt.Errorf("failed to update due date: %w", err)
	}
	return nil
}

// ArchiveTask archives a task. Archiving twice is rejected, not a
// silent no-op.
func (s *CommandService) ArchiveTask(task *models.Task, actor models.Actor, at time.Time) error {
	if task.Archived {
		return fmt.Errorf("%w: %q", ErrTaskAlreadyArchived, task.Title)
	}

	task.Archived = true
	task.ArchivedAt = &at
	task.ArchivedBy = actor.Name
	if err := s.taskRepo.Update(task); err != nil {
		return fmt.Errorf("failed to archive task: %w", err)
	}

	s.appendActivity(task, models.ActivityArchived, fmt.Sprintf("archived by %s", actor.Name), actor)
	return nil
}

// AddLabel appends a label to a task if it is not already present.
func (s *CommandService) AddLabel(task *models.Task, label string, actor models.Actor) error {
	for _, l := range task.Labels {
		if l == label {
			return nil
		}
	}
	task.Labels = append(task.Labels, label)
	if err := s.taskRepo.Update(task); err != nil {
		return fmt.Errorf("failed to add label: %w", err)
	}

	s.appendActivity(task, models.ActivityLabeled, fmt.Sprintf("added label %q", label), actor)
	return nil
}

// Comment records a comment on a task's activity feed.
func (s *CommandService) Comment(task *models.Task, text string, actor models.Actor) error {
	s.appendActivity(task, models.ActivityCommented, text, actor)
	return nil
}

func (s *CommandService) executeMove(input ExecuteInput, parsed command.ParsedCommand, result *CommandResult) (*CommandResult, error) {
	board, snapshot, err := s.boardSnapshot(input.BoardID)
	if err != nil {
		return result, err
	}

	task, err := command.ResolveTask(parsed.TaskRef, snapshot)
	if err != nil {
		return result, err
	}
	target, err := command.ResolveColumn(parsed.Params.Column, board.Columns)
	if err != nil {
		return result, err
	}

	if task.ColumnID == target.ID {
		result.Action = "unchanged"
		result.Task = task
		result.Message = fmt.Sprintf("%q is already in %s", task.Title, target.Title)
		return result, nil
	}

	from := columnTitle(board.Columns, task.ColumnID)
	if err := s.MoveTask(task, target, from, input.Actor); err != nil {
		return result, err
	}

	result.Action = "moved"
	result.Task = task
	result.Message = fmt.Sprintf("Moved %q from %s to %s", task.Title, from, target.Title)
	return result, nil
}

func (s *CommandService) executeComplete(input ExecuteInput, parsed command.ParsedCommand, result *CommandResult) (*CommandResult, error) {
	board, snapshot, err := s.boardSnapshot(input.BoardID)
	if err != nil {
		return result, err
	}

	task, err := command.ResolveTask(parsed.TaskRef, snapshot)
	if err != nil {
		return result, err
	}
	done, err := command.ResolveDoneColumn(board.Columns)
	if err != nil {
		return result, err
	}

	from := columnTitle(board.Columns, task.ColumnID)
	if err := s.MoveTask(task, done, from, input.Actor); err != nil {
		return result, err
	}

	result.Action = "completed"
	result.Task = task
	result.Message = fmt.Sprintf("Completed %q", task.Title)
	return result, nil
}

func (s *CommandService) executePriority(input ExecuteInput, parsed command.ParsedCommand, result *CommandResult) (*CommandResult, error) {
	_, snapshot, err := s.boardSnapshot(input.BoardID)
	if err != nil {
		return result, err
	}

	task, err := command.ResolveTask(parsed.TaskRef, snapshot)
	if err != nil {
		return result, err
	}
	if err := s.SetPriority(task, parsed.Params.Priority, input.Actor); err != nil {
		return result, err
	}

	result.Action = "priority_changed"
	result.Task = task
	result.Message = fmt.Sprintf("Set priority of %q to %s", task.Title, task.Priority)
	return result, nil
}

func (s *CommandService) executeDue(input ExecuteInput, parsed command.ParsedCommand, result *CommandResult) (*CommandResult, error) {
	// A due command without a recognized date is ambiguous. Executing
	// it anyway would clear whatever due date the task already has.
	if parsed.Params.DueDate == nil {
		return result, fmt.Errorf("%w: %q", ErrDueDateRequired, input.Text)
	}

	_, snapshot, err := s.boardSnapshot(input.BoardID)
	if err != nil {
		return result, err
	}

	task, err := command.ResolveTask(parsed.TaskRef, snapshot)
	if err != nil {
		return result, err
	}
	if err := s.SetDueDate(task, parsed.Params.DueDate); err != nil {
		return result, err
	}

	result.Action = "due_changed"
	result.Task = task
	result.Message = fmt.Sprintf("Set due date of %q to %s", task.Title, task.DueDate.Format("2006-01-02"))
	return result, nil
}

func (s *CommandService) executeArchive(input ExecuteInput, parsed command.ParsedCommand, result *CommandResult, now time.Time) (*CommandResult, error) {
	board, snapshot, err := s.boardSnapshot(input.BoardID)
	if err != nil {
		return result, err
	}

	if parsed.Params.BulkDone {
		done, err := command.ResolveDoneColumn(board.Columns)
		if err != nil {
			return result, err
		}

		var archived []models.Task
		for i := range snapshot {
			if snapshot[i].ColumnID != done.ID {
				continue
			}
			if err := s.ArchiveTask(&snapshot[i], input.Actor, now); err != nil {
				return result, err
			}
			archived = append(archived, snapshot[i])
		}

		result.Action = "archived"
		result.Tasks = archived
		result.Message = fmt.Sprintf("Archived %d tasks from %s", len(archived), done.Title)
		return result, nil
	}

	task, err := command.ResolveTask(parsed.TaskRef, snapshot)
	if err != nil {
		return result, err
	}
	if err := s.ArchiveTask(task, input.Actor, now); err != nil {
		return result, err
	}

	result.Action = "archived"
	result.Task = task
	result.Message = fmt.Sprintf("Archived %q", task.Title)
	return result, nil
}

func (s *CommandService) executeQuery(input ExecuteInput, parsed command.ParsedCommand, result *CommandResult, now time.Time) (*CommandResult, error) {
	filter := repository.TaskFilter{
		OrganizationID: input.OrganizationID,
		BoardID:        &input.BoardID,
	}

	var what string
	switch parsed.Params.Query {
	case command.QueryPriority:
		p := parsed.Params.Priority
		filter.Priority = &p
		what = fmt.Sprintf("%s tasks", p)
	case command.QueryDue:
		endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		filter.DueBefore = &endOfDay
		what = "tasks due"
	case command.QueryColumn:
		board, err := s.boardRepo.FindWithColumns(input.BoardID)
		if err != nil {
			return result, fmt.Errorf("failed to load board: %w", err)
		}
		col, err := command.ResolveColumn(parsed.Params.Column, board.Columns)
		if err != nil {
			return result, err
		}
		filter.ColumnID = &col.ID
		what = fmt.Sprintf("tasks in %s", col.Title)
	default:
		what = "tasks"
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return result, fmt.Errorf("failed to list tasks: %w", err)
	}

	result.Action = "query"
	result.Tasks = tasks
	result.Message = fmt.Sprintf("Found %d %s", total, what)
	return result, nil
}

// boardSnapshot loads the board with ordered columns and the
// point-in-time non-archived task snapshot resolution runs over.
func (s *CommandService) boardSnapshot(boardID uint64) (*models.Board, []models.Task, error) {
	board, err := s.boardRepo.FindWithColumns(boardID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load board: %w", err)
	}
	snapshot, err := s.taskRepo.Snapshot(boardID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load task snapshot: %w", err)
	}
	return board, snapshot, nil
}

func (s *CommandService) appendActivity(task *models.Task, action models.ActivityAction, detail string, actor models.Actor) {
	activity := &models.Activity{
		TaskID:         task.ID,
		BoardID:        task.BoardID,
		OrganizationID: task.OrganizationID,
		Action:         action,
		ActorKind:      actor.Kind,
		ActorName:      actor.Name,
		Detail:         detail,
	}
	if err := s.activityRepo.Create(activity); err != nil {
		// The audit trail must not fail the mutation it describes.
		zap.L().Warn("failed to append activity",
			zap.Uint64("task_id", task.ID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
