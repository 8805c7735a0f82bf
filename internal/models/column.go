package models

import "time"

// Column is a named bucket within a board. The title is free text: a
// column's meaning (todo / in progress / done) is inferred from title
// keywords at resolution time and is never stored separately.
type Column struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	BoardID   uint64    `gorm:"not null;index" json:"board_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	Color     string    `gorm:"type:varchar(32)" json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Board Board  `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	Tasks []Task `gorm:"foreignKey:ColumnID" json:"tasks,omitempty"`
}
