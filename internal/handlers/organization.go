package handlers

import (
	"errors"
	"net/http"

	"github.com/flowboard/flowboard-api/internal/database"
	"github.com/flowboard/flowboard-api/internal/dto"
	apierrors "github.com/flowboard/flowboard-api/internal/errors"
	"github.com/flowboard/flowboard-api/internal/middleware"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/services"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler coordinates organization HTTP handlers.
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// CreateOrganization creates a new organization owned by the caller.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateOrganizationRequest struct {
		Name string `json:"name" binding:"required,max=255"`
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.CreateOrganization(req.Name, userID)
	if err != nil {
		if errors.Is(err, services.ErrOrgNameRequired) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to create organization")
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org, true))
}

// JoinOrganization joins the caller to an organization via invite code.
func (h *OrganizationHandler) JoinOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.JoinOrganization(req.InviteCode, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInviteCode):
			apierrors.NotFound(c, err.Error())
		case errors.Is(err, services.ErrAlreadyMember):
			apierrors.Conflict(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to join organization")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, false))
}

// ListOrganizations lists the caller's organizations.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	orgs, err := h.orgService.ListOrganizations(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list organizations")
		return
	}

	dtos := make([]dto.OrganizationDTO, len(orgs))
	for i, org := range orgs {
		dtos[i] = dto.ToOrganizationDTO(org, false)
	}

	c.JSON(http.StatusOK, gin.H{"organizations": dtos})
}

// GetOrganization returns an organization with its members.
// Membership is already verified by RequireOrganizationAccess.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	orgInterface, exists := c.Get("organization")
	if !exists {
		apierrors.InternalError(c, "Organization not found in context")
		return
	}
	org, ok := orgInterface.(models.Organization)
	if !ok {
		apierrors.InternalError(c, "Invalid organization data")
		return
	}

	memberInterface, _ := c.Get("organization_member")
	self, _ := memberInterface.(models.OrganizationMember)

	var members []models.OrganizationMember
	if err := database.GetDB().
		Preload("User").
		Where("organization_id = ?", org.ID).
		Find(&members).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch members")
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(org, members, self.Role))
}
