package dto

import "github.com/flowboard/flowboard-api/internal/command"

// CommandRequest is a natural-language command submitted to a board
type CommandRequest struct {
	Text string `json:"text" binding:"required"`
}

// ParsedCommandDTO echoes back how the command text was understood.
// It is returned on success and failure alike.
type ParsedCommandDTO struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// CommandResponse is the result of executing a command
type CommandResponse struct {
	Parsed  ParsedCommandDTO `json:"parsed"`
	Action  string           `json:"action,omitempty"`
	Message string           `json:"message,omitempty"`
	Task    *TaskDTO         `json:"task,omitempty"`
	Tasks   []TaskDTO        `json:"tasks,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// ToParsedCommandDTO converts a parsed command to its echo form
func ToParsedCommandDTO(parsed command.ParsedCommand) ParsedCommandDTO {
	return ParsedCommandDTO{
		Type:        string(parsed.Type),
		Description: parsed.Describe(),
		Confidence:  parsed.Confidence,
	}
}
