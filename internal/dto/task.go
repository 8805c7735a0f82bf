package dto

import (
	"time"

	"github.com/flowboard/flowboard-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64 `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code,omitempty"`
}

// ColumnDTO represents a board column in API responses
type ColumnDTO struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Color    string `json:"color,omitempty"`
}

// BoardDTO represents a board in API responses
type BoardDTO struct {
	ID             uint64      `json:"id"`
	OrganizationID uint64      `json:"organization_id"`
	Name           string      `json:"name"`
	Prefix         string      `json:"prefix"`
	Columns        []ColumnDTO `json:"columns,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64              `json:"id"`
	PublicID       string              `json:"public_id"`
	Seq            uint64              `json:"seq"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	BoardID        uint64              `json:"board_id"`
	ColumnID       uint64              `json:"column_id"`
	OrganizationID uint64              `json:"organization_id"`
	Priority       models.TaskPriority `json:"priority"`
	DueDate        *time.Time          `json:"due_date"`
	Labels         []string            `json:"labels"`
	AssigneeID     *uint64             `json:"assignee_id"`
	Archived       bool                `json:"archived"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Column         *ColumnDTO          `json:"column,omitempty"`
	Assignee       *UserDTO            `json:"assignee,omitempty"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization, includeInviteCode bool) OrganizationDTO {
	dto := OrganizationDTO{
		ID:   org.ID,
		Name: org.Name,
	}
	if includeInviteCode {
		dto.InviteCode = org.InviteCode
	}
	return dto
}

// ToColumnDTO converts a Column model to ColumnDTO
func ToColumnDTO(col models.Column) ColumnDTO {
	return ColumnDTO{
		ID:       col.ID,
		Title:    col.Title,
		Position: col.Position,
		Color:    col.Color,
	}
}

// ToBoardDTO converts a Board model to BoardDTO
func ToBoardDTO(board models.Board) BoardDTO {
	dto := BoardDTO{
		ID:             board.ID,
		OrganizationID: board.OrganizationID,
		Name:           board.Name,
		Prefix:         board.Prefix,
		CreatedAt:      board.CreatedAt,
	}
	for _, col := range board.Columns {
		dto.Columns = append(dto.Columns, ToColumnDTO(col))
	}
	return dto
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:             task.ID,
		PublicID:       task.PublicID,
		Seq:            task.Seq,
		Title:          task.Title,
		Description:    task.Description,
		BoardID:        task.BoardID,
		ColumnID:       task.ColumnID,
		OrganizationID: task.OrganizationID,
		Priority:       task.Priority,
		DueDate:        task.DueDate,
		Labels:         task.Labels,
		AssigneeID:     task.AssigneeID,
		Archived:       task.Archived,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}

	// Include column if preloaded
	if task.Column.ID != 0 {
		col := ToColumnDTO(task.Column)
		dto.Column = &col
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
