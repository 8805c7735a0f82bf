package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/flowboard/flowboard-api/internal/dto"
	apierrors "github.com/flowboard/flowboard-api/internal/errors"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/repository"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RuleHandler coordinates automation rule HTTP handlers. Rules are
// scoped to an organization; routes sit behind RequireOrganizationAccess.
type RuleHandler struct {
	ruleRepo repository.RuleRepository
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleRepo repository.RuleRepository) *RuleHandler {
	return &RuleHandler{ruleRepo: ruleRepo}
}

// ListRules lists the organization's automation rules.
func (h *RuleHandler) ListRules(c *gin.Context) {
	org, ok := contextOrganization(c)
	if !ok {
		return
	}

	rules, err := h.ruleRepo.ListByOrganization(org.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list rules")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": dto.ToRuleDTOs(rules)})
}

// CreateRule creates an automation rule.
func (h *RuleHandler) CreateRule(c *gin.Context) {
	org, ok := contextOrganization(c)
	if !ok {
		return
	}

	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	trigger := models.RuleTrigger(req.Trigger)
	if !trigger.Valid() {
		apierrors.BadRequest(c, "Unknown trigger")
		return
	}
	action := models.RuleAction(req.Action)
	if !action.Valid() {
		apierrors.BadRequest(c, "Unknown action")
		return
	}

	rule := &models.AutomationRule{
		OrganizationID: org.ID,
		BoardID:        req.BoardID,
		Name:           req.Name,
		Trigger:        trigger,
		Action:         action,
		Params:         req.Params,
		Enabled:        true,
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := h.ruleRepo.Create(rule); err != nil {
		apierrors.InternalError(c, "Failed to create rule")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRuleDTO(*rule))
}

// UpdateRule toggles or reconfigures a rule.
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	org, ok := contextOrganization(c)
	if !ok {
		return
	}

	rule, ok := h.organizationRule(c, org.ID)
	if !ok {
		return
	}

	type UpdateRuleRequest struct {
		Name    *string            `json:"name"`
		Enabled *bool              `json:"enabled"`
		Params  *map[string]string `json:"params"`
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	if req.Params != nil {
		rule.Params = *req.Params
	}

	if err := h.ruleRepo.Update(rule); err != nil {
		apierrors.InternalError(c, "Failed to update rule")
		return
	}

	c.JSON(http.StatusOK, dto.ToRuleDTO(*rule))
}

// DeleteRule removes a rule.
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	org, ok := contextOrganization(c)
	if !ok {
		return
	}

	rule, ok := h.organizationRule(c, org.ID)
	if !ok {
		return
	}

	if err := h.ruleRepo.Delete(rule.ID); err != nil {
		apierrors.InternalError(c, "Failed to delete rule")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rule deleted"})
}

// organizationRule loads the :rule_id parameter and verifies it belongs
// to the organization in context.
func (h *RuleHandler) organizationRule(c *gin.Context, orgID uint64) (*models.AutomationRule, bool) {
	ruleID, err := strconv.ParseUint(c.Param("rule_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid rule ID")
		return nil, false
	}

	rule, err := h.ruleRepo.FindByID(ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Rule not found")
			return nil, false
		}
		apierrors.InternalError(c, "Failed to fetch rule")
		return nil, false
	}
	if rule.OrganizationID != orgID {
		apierrors.NotFound(c, "Rule not found")
		return nil, false
	}

	return rule, true
}

// contextOrganization pulls the organization stored by
// RequireOrganizationAccess.
func contextOrganization(c *gin.Context) (models.Organization, bool) {
	v, exists := c.Get("organization")
	if !exists {
		apierrors.InternalError(c, "Organization not found in context")
		return models.Organization{}, false
	}
	org, ok := v.(models.Organization)
	if !ok {
		apierrors.InternalError(c, "Invalid organization data")
		return models.Organization{}, false
	}
	return org, true
}
