package models

import (
	"time"

	"gorm.io/gorm"
)

// RuleTrigger is the event kind an automation rule reacts to.
type RuleTrigger string

const (
	TriggerPROpened      RuleTrigger = "github_pr_opened"
	TriggerPRMerged      RuleTrigger = "github_pr_merged"
	TriggerPRClosed      RuleTrigger = "github_pr_closed"
	TriggerIssueOpened   RuleTrigger = "github_issue_opened"
	TriggerIssueClosed   RuleTrigger = "github_issue_closed"
	TriggerTaskCreated   RuleTrigger = "task_created"
	TriggerTaskMoved     RuleTrigger = "task_moved"
	TriggerTaskCompleted RuleTrigger = "task_completed"
)

// RuleAction is what an automation rule does when it fires.
type RuleAction string

const (
	ActionCreateTask  RuleAction = "create_task"
	ActionMoveTask    RuleAction = "move_task"
	ActionUpdateTask  RuleAction = "update_task"
	ActionAddLabel    RuleAction = "add_label"
	ActionAddComment  RuleAction = "add_comment"
	ActionNotify      RuleAction = "notify"
	ActionArchiveTask RuleAction = "archive_task"
)

// Valid reports whether t is a known trigger kind.
func (t RuleTrigger) Valid() bool {
	switch t {
	case TriggerPROpened, TriggerPRMerged, TriggerPRClosed,
		TriggerIssueOpened, TriggerIssueClosed,
		TriggerTaskCreated, TriggerTaskMoved, TriggerTaskCompleted:
		return true
	}
	return false
}

// Valid reports whether a is a known action kind.
func (a RuleAction) Valid() bool {
	switch a {
	case ActionCreateTask, ActionMoveTask, ActionUpdateTask,
		ActionAddLabel, ActionAddComment, ActionNotify, ActionArchiveTask:
		return true
	}
	return false
}

type AutomationRule struct {
	ID             uint64      `gorm:"primarykey" json:"id"`
	OrganizationID uint64      `gorm:"not null;index" json:"organization_id"`
	// BoardID narrows the rule to one board; nil means tenant-wide.
	BoardID         *uint64           `gorm:"index" json:"board_id"`
	Name            string            `gorm:"type:varchar(255);not null" json:"name"`
	Enabled         bool              `gorm:"not null;default:true" json:"enabled"`
	Trigger         RuleTrigger       `gorm:"type:varchar(32);not null;index" json:"trigger"`
	Action          RuleAction        `gorm:"type:varchar(32);not null" json:"action"`
	Params          map[string]string `gorm:"serializer:json" json:"params"`
	TriggerCount    uint64            `gorm:"not null;default:0" json:"trigger_count"`
	LastTriggeredAt *time.Time        `json:"last_triggered_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Board        *Board       `gorm:"foreignKey:BoardID" json:"board,omitempty"`
}
