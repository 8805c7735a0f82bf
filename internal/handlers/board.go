package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/flowboard/flowboard-api/internal/dto"
	apierrors "github.com/flowboard/flowboard-api/internal/errors"
	"github.com/flowboard/flowboard-api/internal/middleware"
	"github.com/flowboard/flowboard-api/internal/services"
	"github.com/gin-gonic/gin"
)

// BoardHandler coordinates board HTTP handlers.
type BoardHandler struct {
	boardService *services.BoardService
	orgService   *services.OrganizationService
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(boardService *services.BoardService, orgService *services.OrganizationService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		orgService:   orgService,
	}
}

// CreateBoard creates a board in an organization the caller belongs to.
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateBoardRequest struct {
		OrganizationID uint64 `json:"organization_id" binding:"required"`
		Name           string `json:"name" binding:"required,max=255"`
		Prefix         string `json:"prefix" binding:"max=16"`
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.orgService.EnsureMember(req.OrganizationID, userID); err != nil {
		// 404 rather than 403 to avoid leaking organization existence
		apierrors.NotFound(c, "Organization not found")
		return
	}

	board, err := h.boardService.CreateBoard(services.CreateBoardInput{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Prefix:         req.Prefix,
	})
	if err != nil {
		if errors.Is(err, services.ErrBoardNameRequired) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to create board")
		return
	}

	c.JSON(http.StatusCreated, dto.ToBoardDTO(*board))
}

// GetBoard returns a board with its columns.
// Access is already verified by RequireBoardAccess.
func (h *BoardHandler) GetBoard(c *gin.Context) {
	board, ok := middleware.GetBoard(c)
	if !ok {
		apierrors.InternalError(c, "Board not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(board))
}

// ListBoards lists an organization's boards.
func (h *BoardHandler) ListBoards(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	orgID, err := strconv.ParseUint(c.Query("organization_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization_id")
		return
	}

	if err := h.orgService.EnsureMember(orgID, userID); err != nil {
		apierrors.NotFound(c, "Organization not found")
		return
	}

	boards, err := h.boardService.ListBoards(orgID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list boards")
		return
	}

	dtos := make([]dto.BoardDTO, len(boards))
	for i, board := range boards {
		dtos[i] = dto.ToBoardDTO(board)
	}

	c.JSON(http.StatusOK, gin.H{"boards": dtos})
}
