package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/flowboard/flowboard-api/internal/database"
	"github.com/flowboard/flowboard-api/internal/dto"
	apierrors "github.com/flowboard/flowboard-api/internal/errors"
	"github.com/flowboard/flowboard-api/internal/middleware"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/services"
	"github.com/flowboard/flowboard-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// TaskHandler coordinates task HTTP handlers. Structured CRUD shares
// its mutation path with the command bar, so both record the same
// activity trail.
type TaskHandler struct {
	taskService *services.TaskService
	executor    *services.CommandService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, executor *services.CommandService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		executor:    executor,
	}
}

// ListTasks lists a board's tasks with optional filters.
// Board access is already verified by RequireBoardAccess.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	board, ok := middleware.GetBoard(c)
	if !ok {
		apierrors.InternalError(c, "Board not found in context")
		return
	}

	input := services.ListTasksInput{
		OrganizationID:  board.OrganizationID,
		BoardID:         &board.ID,
		IncludeArchived: c.Query("include_archived") == "true",
	}
	if p := c.Query("priority"); p != "" {
		priority := models.TaskPriority(p)
		if !priority.Valid() {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		input.Priority = &priority
	}
	if cid := c.Query("column_id"); cid != "" {
		columnID, err := strconv.ParseUint(cid, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid column_id")
			return
		}
		input.ColumnID = &columnID
	}
	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateTask creates a task on a board through the executor.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	board, ok := middleware.GetBoard(c)
	if !ok {
		apierrors.InternalError(c, "Board not found in context")
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
		Labels      []string   `json:"labels"`
		Column      string     `json:"column"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.executor.CreateTask(services.CreateTaskInput{
		OrganizationID: board.OrganizationID,
		BoardID:        board.ID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       models.TaskPriority(req.Priority),
		DueDate:        req.DueDate,
		Labels:         req.Labels,
		Column:         req.Column,
		Actor:          actor,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task by id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := h.accessibleTask(c)
	if !ok {
		return
	}

	full, err := h.taskService.GetTask(task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*full))
}

// UpdateTask updates task fields.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := h.accessibleTask(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateTaskRequest struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		Priority     *string    `json:"priority"`
		DueDate      *time.Time `json:"due_date"`
		ClearDueDate bool       `json:"clear_due_date"`
		ColumnID     *uint64    `json:"column_id"`
		AssigneeID   *uint64    `json:"assignee_id"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		ColumnID:     req.ColumnID,
		AssigneeID:   req.AssigneeID,
		Actor:        actor,
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		if !priority.Valid() {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		input.Priority = &priority
	}

	updated, err := h.taskService.UpdateTask(task.ID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// ArchiveTask archives a task. Archiving twice is an error.
func (h *TaskHandler) ArchiveTask(c *gin.Context) {
	task, ok := h.accessibleTask(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	archived, err := h.taskService.ArchiveTask(task.ID, actor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*archived))
}

// accessibleTask loads the task in the :id parameter and verifies the
// caller belongs to its organization. 404 on non-membership so task
// existence does not leak.
func (h *TaskHandler) accessibleTask(c *gin.Context) (*models.Task, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return nil, false
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		respondTaskError(c, err)
		return nil, false
	}

	var member models.OrganizationMember
	err = database.GetDB().
		Where("organization_id = ? AND user_id = ?", task.OrganizationID, userID).
		First(&member).Error
	if err != nil {
		apierrors.NotFound(c, "Task not found")
		return nil, false
	}

	return task, true
}

// currentActor builds the user actor for mutation provenance.
func currentActor(c *gin.Context) (models.Actor, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		return models.Actor{}, false
	}

	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		return models.Actor{}, false
	}
	return models.Actor{Kind: models.ActorUser, Name: user.DisplayName}, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidColumn):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskAlreadyArchived):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
