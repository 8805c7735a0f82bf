package handlers

import (
	"errors"
	"net/http"

	"github.com/flowboard/flowboard-api/internal/command"
	"github.com/flowboard/flowboard-api/internal/dto"
	apierrors "github.com/flowboard/flowboard-api/internal/errors"
	"github.com/flowboard/flowboard-api/internal/events"
	"github.com/flowboard/flowboard-api/internal/middleware"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommandHandler is the natural-language command bar endpoint.
type CommandHandler struct {
	commandService    *services.CommandService
	automationService *services.AutomationService
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(commandService *services.CommandService, automationService *services.AutomationService) *CommandHandler {
	return &CommandHandler{
		commandService:    commandService,
		automationService: automationService,
	}
}

// ExecuteCommand interprets and applies one command against a board.
// The response always echoes how the text was understood, on failure
// included, so the caller can show what was attempted.
func (h *CommandHandler) ExecuteCommand(c *gin.Context) {
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

	var req dto.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.commandService.Execute(services.ExecuteInput{
		OrganizationID: board.OrganizationID,
		BoardID:        board.ID,
		Actor:          actor,
		Text:           req.Text,
	})
	if err != nil {
		c.JSON(commandErrorStatus(err), dto.CommandResponse{
			Parsed: dto.ToParsedCommandDTO(result.Command),
			Error:  err.Error(),
		})
		return
	}

	h.dispatchLifecycle(board, result)

	resp := dto.CommandResponse{
		Parsed:  dto.ToParsedCommandDTO(result.Command),
		Action:  result.Action,
		Message: result.Message,
	}
	if result.Task != nil {
		task := dto.ToTaskDTO(*result.Task)
		resp.Task = &task
	}
	if result.Tasks != nil {
		resp.Tasks = dto.ToTaskDTOs(result.Tasks)
	}

	c.JSON(http.StatusOK, resp)
}

// dispatchLifecycle feeds successful mutations back into the automation
// engine as internal events. Rule failures never fail the command that
// caused them.
func (h *CommandHandler) dispatchLifecycle(board models.Board, result *services.CommandResult) {
	if result.Task == nil {
		return
	}

	var triggers []models.RuleTrigger
	switch result.Action {
	case "created":
		triggers = append(triggers, models.TriggerTaskCreated)
	case "moved":
		triggers = append(triggers, models.TriggerTaskMoved)
		// A move into the done-family column is also a completion.
		if done, err := command.ResolveDoneColumn(board.Columns); err == nil && done.ID == result.Task.ColumnID {
			triggers = append(triggers, models.TriggerTaskCompleted)
		}
	case "completed":
		triggers = append(triggers, models.TriggerTaskMoved, models.TriggerTaskCompleted)
	}

	for _, trigger := range triggers {
		_, err := h.automationService.HandleEvent(&events.Event{
			Trigger:        trigger,
			OrganizationID: board.OrganizationID,
			BoardID:        board.ID,
			Task:           result.Task,
		})
		if err != nil {
			zap.L().Warn("lifecycle automation failed",
				zap.String("trigger", string(trigger)),
				zap.Uint64("task_id", result.Task.ID),
				zap.Error(err))
		}
	}
}

func commandErrorStatus(err error) int {
	switch {
	case errors.Is(err, command.ErrTaskNotFound),
		errors.Is(err, command.ErrColumnNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnknownCommand),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrDueDateRequired),
		errors.Is(err, services.ErrBoardHasNoColumns):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTaskAlreadyArchived):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
