package models

import (
	"time"

	"gorm.io/gorm"
)

type Board struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	// Prefix is the uppercase short code used in bracketed task
	// references, e.g. [FLOW-42].
	Prefix    string         `gorm:"type:varchar(16);not null" json:"prefix"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Columns      []Column     `gorm:"foreignKey:BoardID" json:"columns,omitempty"`
	Tasks        []Task       `gorm:"foreignKey:BoardID" json:"tasks,omitempty"`
}
