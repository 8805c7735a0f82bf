package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskPriority is the ordered priority enum. p0 outranks p1 outranks p2
// outranks p3.
type TaskPriority string

const (
	PriorityCritical TaskPriority = "p0"
	PriorityHigh     TaskPriority = "p1"
	PriorityMedium   TaskPriority = "p2"
	PriorityLow      TaskPriority = "p3"
)

// Rank returns the sort rank of a priority, lower is more urgent.
// Unknown values rank below p3.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Valid reports whether p is one of the four known priorities.
func (p TaskPriority) Valid() bool {
	return p.Rank() < 4
}

type Task struct {
	ID             uint64       `gorm:"primarykey" json:"id"`
	PublicID       string       `gorm:"type:varchar(32);uniqueIndex;not null" json:"public_id"`
	Seq            uint64       `gorm:"not null;index:idx_tasks_board_seq" json:"seq"`
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	BoardID        uint64       `gorm:"not null;index:idx_tasks_board_seq;index" json:"board_id"`
	ColumnID       uint64       `gorm:"not null;index" json:"column_id"`
	OrganizationID uint64       `gorm:"not null;index" json:"organization_id"`
	Position       float64      `gorm:"not null;default:0" json:"position"`
	Priority       TaskPriority `gorm:"type:varchar(4);not null;default:'p2'" json:"priority"`
	DueDate        *time.Time   `json:"due_date"`
	Labels         []string     `gorm:"serializer:json" json:"labels"`
	AssigneeID     *uint64      `json:"assignee_id"`
	Archived       bool         `gorm:"not null;default:false;index" json:"archived"`
	ArchivedAt     *time.Time   `json:"archived_at"`
	ArchivedBy     string       `gorm:"type:varchar(255)" json:"archived_by,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Board        Board        `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	Column       Column       `gorm:"foreignKey:ColumnID" json:"column,omitempty"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Assignee     *User        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}
