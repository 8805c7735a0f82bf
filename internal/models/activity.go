package models

import "time"

type ActivityAction string

const (
	ActivityCreated         ActivityAction = "created"
	ActivityMoved           ActivityAction = "moved"
	ActivityPriorityChanged ActivityAction = "priority_changed"
	ActivityArchived        ActivityAction = "archived"
	ActivityLabeled         ActivityAction = "labeled"
	ActivityCommented       ActivityAction = "commented"
	ActivityLinked          ActivityAction = "linked"
	ActivityNotified        ActivityAction = "notified"
)

// Activity is an append-only audit entry. Rows are only ever inserted;
// there is no update or delete path anywhere in the codebase.
type Activity struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	TaskID         uint64         `gorm:"index" json:"task_id"`
	BoardID        uint64         `gorm:"not null;index" json:"board_id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	Action         ActivityAction `gorm:"type:varchar(32);not null" json:"action"`
	ActorKind      ActorKind      `gorm:"type:varchar(16);not null" json:"actor_kind"`
	ActorName      string         `gorm:"type:varchar(255);not null" json:"actor_name"`
	Detail         string         `gorm:"type:text" json:"detail"`
	CreatedAt      time.Time      `json:"created_at"`
}
