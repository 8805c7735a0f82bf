package models

import (
	"strconv"
	"time"
)

type LinkType string

const (
	LinkGitHubPR    LinkType = "github_pr"
	LinkGitHubIssue LinkType = "github_issue"
	LinkURL         LinkType = "url"
)

type LinkStatus string

const (
	LinkStatusOpen    LinkStatus = "open"
	LinkStatusClosed  LinkStatus = "closed"
	LinkStatusMerged  LinkStatus = "merged"
	LinkStatusDraft   LinkStatus = "draft"
	LinkStatusUnknown LinkStatus = "unknown"
)

// ExternalLink ties a task to an object in a third-party system. At
// most one link exists per (task, system, external id): upserts key on
// LinkKey, a deterministic composite of type, external id and task id.
type ExternalLink struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	OrganizationID uint64     `gorm:"not null;index" json:"organization_id"`
	TaskID         uint64     `gorm:"not null;index" json:"task_id"`
	LinkKey        string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"`
	Type           LinkType   `gorm:"type:varchar(32);not null" json:"type"`
	ExternalID     string     `gorm:"type:varchar(128);not null" json:"external_id"`
	URL            string     `gorm:"type:varchar(512)" json:"url"`
	Title          string     `gorm:"type:varchar(512)" json:"title"`
	Status         LinkStatus `gorm:"type:varchar(16);not null;default:'unknown'" json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

// LinkKeyFor builds the deterministic upsert key for a link.
func LinkKeyFor(linkType LinkType, externalID string, taskID uint64) string {
	return string(linkType) + ":" + externalID + ":" + strconv.FormatUint(taskID, 10)
}
