package middleware

import (
	"net/http"
	"strconv"

	"github.com/flowboard/flowboard-api/internal/database"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireBoardAccess checks if the user has access to a board.
// User must be a member of the board's organization.
func RequireBoardAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		boardIDStr := c.Param("id")
		boardID, err := strconv.ParseUint(boardIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid board ID",
			})
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		var board models.Board
		if err := database.GetDB().
			Preload("Columns", func(db *gorm.DB) *gorm.DB {
				return db.Order("columns.position ASC")
			}).
			First(&board, boardID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Board not found",
			})
			c.Abort()
			return
		}

		// Check if user is a member of the board's organization
		var member models.OrganizationMember
		err = database.GetDB().
			Where("organization_id = ? AND user_id = ?", board.OrganizationID, userID).
			First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking board existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Board not found",
			})
			c.Abort()
			return
		}

		c.Set("board", board)
		c.Next()
	}
}

// GetBoard retrieves the board stored by RequireBoardAccess
func GetBoard(c *gin.Context) (models.Board, bool) {
	v, exists := c.Get("board")
	if !exists {
		return models.Board{}, false
	}
	board, ok := v.(models.Board)
	return board, ok
}
