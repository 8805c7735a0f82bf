package handlers

import (
	"net/http"
	"strconv"

	"github.com/flowboard/flowboard-api/internal/constants"
	apierrors "github.com/flowboard/flowboard-api/internal/errors"
	"github.com/flowboard/flowboard-api/internal/middleware"
	"github.com/flowboard/flowboard-api/internal/repository"
	"github.com/gin-gonic/gin"
)

// ActivityHandler serves the append-only activity feed.
type ActivityHandler struct {
	activityRepo repository.ActivityRepository
	taskHandler  *TaskHandler
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityRepo repository.ActivityRepository, taskHandler *TaskHandler) *ActivityHandler {
	return &ActivityHandler{
		activityRepo: activityRepo,
		taskHandler:  taskHandler,
	}
}

// ListBoardActivity lists a board's activity, newest first.
// Board access is already verified by RequireBoardAccess.
func (h *ActivityHandler) ListBoardActivity(c *gin.Context) {
	board, ok := middleware.GetBoard(c)
	if !ok {
		apierrors.InternalError(c, "Board not found in context")
		return
	}

	activities, err := h.activityRepo.ListByBoard(board.ID, activityLimit(c))
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activity")
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": activities})
}

// ListTaskActivity lists a task's activity, newest first.
func (h *ActivityHandler) ListTaskActivity(c *gin.Context) {
	task, ok := h.taskHandler.accessibleTask(c)
	if !ok {
		return
	}

	activities, err := h.activityRepo.ListByTask(task.ID, activityLimit(c))
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activity")
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": activities})
}

func activityLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", ""))
	if err != nil || limit <= 0 || limit > constants.MaxPageSize {
		return constants.DefaultActivityLimit
	}
	return limit
}
