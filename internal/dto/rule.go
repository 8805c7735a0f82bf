package dto

import (
	"time"

	"github.com/flowboard/flowboard-api/internal/models"
)

// CreateRuleRequest is the payload for creating an automation rule
type CreateRuleRequest struct {
	Name    string            `json:"name" binding:"required"`
	Trigger string            `json:"trigger" binding:"required"`
	Action  string            `json:"action" binding:"required"`
	BoardID *uint64           `json:"board_id"`
	Params  map[string]string `json:"params"`
	Enabled *bool             `json:"enabled"`
}

// RuleDTO represents an automation rule in API responses
type RuleDTO struct {
	ID              uint64             `json:"id"`
	OrganizationID  uint64             `json:"organization_id"`
	BoardID         *uint64            `json:"board_id"`
	Name            string             `json:"name"`
	Trigger         models.RuleTrigger `json:"trigger"`
	Action          models.RuleAction  `json:"action"`
	Params          map[string]string  `json:"params"`
	Enabled         bool               `json:"enabled"`
	TriggerCount    uint64             `json:"trigger_count"`
	LastTriggeredAt *time.Time         `json:"last_triggered_at"`
	CreatedAt       time.Time          `json:"created_at"`
}

// ToRuleDTO converts an AutomationRule model to RuleDTO
func ToRuleDTO(rule models.AutomationRule) RuleDTO {
	return RuleDTO{
		ID:              rule.ID,
		OrganizationID:  rule.OrganizationID,
		BoardID:         rule.BoardID,
		Name:            rule.Name,
		Trigger:         rule.Trigger,
		Action:          rule.Action,
		Params:          rule.Params,
		Enabled:         rule.Enabled,
		TriggerCount:    rule.TriggerCount,
		LastTriggeredAt: rule.LastTriggeredAt,
		CreatedAt:       rule.CreatedAt,
	}
}

// ToRuleDTOs converts a slice of rules
func ToRuleDTOs(rules []models.AutomationRule) []RuleDTO {
	dtos := make([]RuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = ToRuleDTO(rule)
	}
	return dtos
}
