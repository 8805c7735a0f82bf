package services

import (
	"testing"
	"time"

	"github.com/flowboard/flowboard-api/internal/command"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type commandTestEnv struct {
	db           *gorm.DB
	taskRepo     repository.TaskRepository
	activityRepo repository.ActivityRepository
	executor     *CommandService
	org          models.Organization
	board        *models.Board
}

func setupCommandTestEnv(t *testing.T) *commandTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Board{},
		&models.Column{},
		&models.Task{},
		&models.AutomationRule{},
		&models.ExternalLink{},
		&models.Activity{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	org := models.Organization{Name: "Acme", InviteCode: "TEST-TEST-0001"}
	require.NoError(t, db.Create(&org).Error)

	board := &models.Board{
		OrganizationID: org.ID,
		Name:           "Engineering",
		Prefix:         "ENG",
		Columns: []models.Column{
			{Title: "Backlog", Position: 0},
			{Title: "In Progress", Position: 1},
			{Title: "Review", Position: 2},
			{Title: "Done", Position: 3},
		},
	}
	boardRepo := repository.NewBoardRepository(db)
	require.NoError(t, boardRepo.Create(board))

	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	return &commandTestEnv{
		db:           db,
		taskRepo:     taskRepo,
		activityRepo: activityRepo,
		executor:     NewCommandService(taskRepo, boardRepo, activityRepo),
		org:          org,
		board:        board,
	}
}

func (env *commandTestEnv) execute(t *testing.T, text string) *CommandResult {
	t.Helper()
	result, err := env.executor.Execute(ExecuteInput{
		OrganizationID: env.org.ID,
		BoardID:        env.board.ID,
		Actor:          models.Actor{Kind: models.ActorUser, Name: "Dana"},
		Text:           text,
		Now:            testNow,
	})
	require.NoError(t, err)
	return result
}

func (env *commandTestEnv) column(t *testing.T, title string) models.Column {
	t.Helper()
	for _, col := range env.board.Columns {
		if col.Title == title {
			return col
		}
	}
	t.Fatalf("no column %q", title)
	return models.Column{}
}

func (env *commandTestEnv) taskActivities(t *testing.T, taskID uint64) []models.Activity {
	t.Helper()
	activities, err := env.activityRepo.ListByTask(taskID, 100)
	require.NoError(t, err)
	return activities
}

func TestCommandService_CreateWithFragments(t *testing.T) {
	env := setupCommandTestEnv(t)

	result := env.execute(t, "create task: Fix login bug, priority high, due tomorrow")

	require.Equal(t, command.TypeCreate, result.Command.Type)
	require.NotNil(t, result.Task)
	task := result.Task

	assert.Equal(t, "Fix login bug", task.Title)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), *task.DueDate)
	assert.Equal(t, env.column(t, "Backlog").ID, task.ColumnID)
	assert.NotEmpty(t, task.PublicID)
	assert.Equal(t, uint64(1), task.Seq)

	activities := env.taskActivities(t, task.ID)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityCreated, activities[0].Action)
	assert.Equal(t, models.ActorUser, activities[0].ActorKind)
	assert.Equal(t, "Dana", activities[0].ActorName)
}

func TestCommandService_CreateRequiresTitle(t *testing.T) {
	env := setupCommandTestEnv(t)

	result, err := env.executor.Execute(ExecuteInput{
		OrganizationID: env.org.ID,
		BoardID:        env.board.ID,
		Actor:          models.Actor{Kind: models.ActorUser, Name: "Dana"},
		Text:           "create task",
		Now:            testNow,
	})
	require.ErrorIs(t, err, ErrTitleRequired)
	// The parsed echo survives the failure.
	assert.Equal(t, command.TypeCreate, result.Command.Type)
}

func TestCommandService_MoveRecordsActivity(t *testing.T) {
	env := setupCommandTestEnv(t)
	created := env.execute(t, "create task fix login bug")

	result := env.execute(t, "move fix login bug to review")

	require.NotNil(t, result.Task)
	assert.Equal(t, env.column(t, "Review").ID, result.Task.ColumnID)

	activities := env.taskActivities(t, created.Task.ID)
	require.Len(t, activities, 2)
	assert.Equal(t, models.ActivityMoved, activities[0].Action)
	assert.Equal(t, `from "Backlog" to "Review"`, activities[0].Detail)
}

func TestCommandService_MoveToCurrentColumnIsNoOp(t *testing.T) {
	env := setupCommandTestEnv(t)
	created := env.execute(t, "create task fix login bug")

	result := env.execute(t, "move fix login bug to backlog")

	// The result says nothing changed rather than claiming a move.
	assert.Equal(t, "unchanged", result.Action)
	assert.Equal(t, `"fix login bug" is already in Backlog`, result.Message)

	// No second activity: moving into the current column changes
	// nothing and records nothing.
	activities := env.taskActivities(t, created.Task.ID)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityCreated, activities[0].Action)
}

func TestCommandService_CompleteMovesToDone(t *testing.T) {
	env := setupCommandTestEnv(t)
	created := env.execute(t, "create task quarterly report")

	result := env.execute(t, "mark quarterly report as done")

	assert.Equal(t, "completed", result.Action)
	require.NotNil(t, result.Task)
	assert.Equal(t, env.column(t, "Done").ID, result.Task.ColumnID)

	activities := env.taskActivities(t, created.Task.ID)
	require.Len(t, activities, 2)
	assert.Equal(t, models.ActivityMoved, activities[0].Action)
}

func TestCommandService_PriorityRoundTrip(t *testing.T) {
	env := setupCommandTestEnv(t)
	created := env.execute(t, "create task fix login bug")
	assert.Equal(t, models.PriorityMedium, created.Task.Priority)

	result := env.execute(t, "set priority of fix login bug to p1")
	assert.Equal(t, models.PriorityHigh, result.Task.Priority)

	activities := env.taskActivities(t, created.Task.ID)
	require.Len(t, activities, 2)
	assert.Equal(t, models.ActivityPriorityChanged, activities[0].Action)
	assert.Equal(t, "p2 to p1", activities[0].Detail)

	query := env.execute(t, "show high tasks")
	require.Len(t, query.Tasks, 1)
	assert.Equal(t, created.Task.ID, query.Tasks[0].ID)
}

func TestCommandService_SamePriorityWritesNoActivity(t *testing.T) {
	env := setupCommandTestEnv(t)
	created := env.execute(t, "create task fix login bug")

	env.execute(t, "set priority of fix login bug to p2")

	activities := env.taskActivities(t, created.Task.ID)
	require.Len(t, activities, 1)
}

func TestCommandService_DueChangeWritesNoActivity(t *testing.T) {
	env := setupCommandTestEnv(t)
	created := env.execute(t, "create task fix login bug")

	result := env.execute(t, "set due date of fix login bug to next friday")

	require.NotNil(t, result.Task.DueDate)
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), *result.Task.DueDate)

	// Due date edits are deliberately absent from the audit trail.
	activities := env.taskActivities(t, created.Task.ID)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityCreated, activities[0].Action)
}

// A due command whose date does not parse is rejected, not executed
// with a nil date, which would silently clear the existing due date.
func TestCommandService_DueWithoutParsableDateIsRejected(t *testing.T) {
	env := setupCommandTestEnv(t)
	created := env.execute(t, "create task pay invoices, due tomorrow")
	require.NotNil(t, created.Task.DueDate)

	_, err := env.executor.Execute(ExecuteInput{
		OrganizationID: env.org.ID,
		BoardID:        env.board.ID,
		Actor:          models.Actor{Kind: models.ActorUser, Name: "Dana"},
		Text:           "set due date of pay invoices to thursday",
		Now:            testNow,
	})
	require.ErrorIs(t, err, ErrDueDateRequired)

	fresh, err := env.taskRepo.FindByID(created.Task.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.DueDate)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), *fresh.DueDate)
}

func TestCommandService_PublicIDBeatsTitleMatch(t *testing.T) {
	env := setupCommandTestEnv(t)
	first := env.execute(t, "create task deploy service")

	// A decoy whose title is exactly the first task's public id.
	decoy, err := env.executor.CreateTask(CreateTaskInput{
		OrganizationID: env.org.ID,
		BoardID:        env.board.ID,
		Title:          first.Task.PublicID,
		Actor:          models.Actor{Kind: models.ActorUser, Name: "Dana"},
	})
	require.NoError(t, err)

	result := env.execute(t, "archive "+first.Task.PublicID)

	require.NotNil(t, result.Task)
	assert.Equal(t, first.Task.ID, result.Task.ID)

	fresh, err := env.taskRepo.FindByID(decoy.ID)
	require.NoError(t, err)
	assert.False(t, fresh.Archived)
}

func TestCommandService_ArchiveTwiceRejected(t *testing.T) {
	env := setupCommandTestEnv(t)
	env.execute(t, "create task old landing page")

	result := env.execute(t, "archive old landing page")
	require.NotNil(t, result.Task)
	assert.True(t, result.Task.Archived)
	assert.Equal(t, "Dana", result.Task.ArchivedBy)

	// Archived tasks leave the resolution snapshot, so the second
	// attempt cannot even find it.
	_, err := env.executor.Execute(ExecuteInput{
		OrganizationID: env.org.ID,
		BoardID:        env.board.ID,
		Actor:          models.Actor{Kind: models.ActorUser, Name: "Dana"},
		Text:           "archive old landing page",
		Now:            testNow,
	})
	require.Error(t, err)

	// Archiving the same row again through the executor primitive is
	// rejected explicitly.
	task, err := env.taskRepo.FindByID(result.Task.ID)
	require.NoError(t, err)
	err = env.executor.ArchiveTask(task, models.Actor{Kind: models.ActorUser, Name: "Dana"}, testNow)
	assert.ErrorIs(t, err, ErrTaskAlreadyArchived)
}

func TestCommandService_BulkArchiveDone(t *testing.T) {
	env := setupCommandTestEnv(t)

	for _, title := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		_, err := env.executor.CreateTask(CreateTaskInput{
			OrganizationID: env.org.ID,
			BoardID:        env.board.ID,
			Title:          title,
			Column:         "done",
			Actor:          models.Actor{Kind: models.ActorUser, Name: "Dana"},
		})
		require.NoError(t, err)
	}
	keep := env.execute(t, "create task still in flight")

	result := env.execute(t, "archive all done tasks")

	assert.Len(t, result.Tasks, 5)
	assert.Equal(t, "Archived 5 tasks from Done", result.Message)

	fresh, err := env.taskRepo.FindByID(keep.Task.ID)
	require.NoError(t, err)
	assert.False(t, fresh.Archived)
}

func TestCommandService_QueryColumn(t *testing.T) {
	env := setupCommandTestEnv(t)
	env.execute(t, "create task fix login bug")
	env.execute(t, "create task update docs")
	env.execute(t, "move update docs to review")

	result := env.execute(t, "show tasks in review")

	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "update docs", result.Tasks[0].Title)
}

func TestCommandService_UnknownCommandKeepsEcho(t *testing.T) {
	env := setupCommandTestEnv(t)

	result, err := env.executor.Execute(ExecuteInput{
		OrganizationID: env.org.ID,
		BoardID:        env.board.ID,
		Actor:          models.Actor{Kind: models.ActorUser, Name: "Dana"},
		Text:           "hello there",
		Now:            testNow,
	})
	require.ErrorIs(t, err, ErrUnknownCommand)
	require.NotNil(t, result)
	assert.Equal(t, command.TypeUnknown, result.Command.Type)
	assert.Less(t, result.Command.Confidence, command.MinConfidence)
}
