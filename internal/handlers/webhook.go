package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/flowboard/flowboard-api/internal/database"
	apierrors "github.com/flowboard/flowboard-api/internal/errors"
	"github.com/flowboard/flowboard-api/internal/events"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives GitHub webhook deliveries.
type WebhookHandler struct {
	automationService *services.AutomationService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(automationService *services.AutomationService) *WebhookHandler {
	return &WebhookHandler{automationService: automationService}
}

// HandleGitHub processes one webhook delivery for a board. The payload
// is validated and mapped to a typed event at this boundary; raw JSON
// never reaches the rule engine. Deliveries for event kinds we do not
// react to are acknowledged and dropped.
func (h *WebhookHandler) HandleGitHub(c *gin.Context) {
	boardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid board ID")
		return
	}

	var board models.Board
	if err := database.GetDB().First(&board, boardID).Error; err != nil {
		apierrors.NotFound(c, "Board not found")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apierrors.BadRequest(c, "Failed to read request body")
		return
	}

	ev, err := events.ParseGitHub(body, board.OrganizationID, board.ID)
	if err != nil {
		if errors.Is(err, events.ErrUnsupportedEvent) {
			c.JSON(http.StatusOK, gin.H{"ignored": true})
			return
		}
		apierrors.BadRequest(c, "Invalid webhook payload")
		return
	}

	fired, err := h.automationService.HandleEvent(ev)
	if err != nil {
		// The sender retries on non-2xx; rule fetch failures are our
		// problem, not the sender's.
		zap.L().Error("webhook automation failed",
			zap.Uint64("board_id", board.ID),
			zap.String("trigger", string(ev.Trigger)),
			zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"rules_fired": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trigger":     ev.Trigger,
		"rules_fired": fired,
	})
}
