package command

import (
	"fmt"
	"time"

	"github.com/flowboard/flowboard-api/internal/models"
)

// Type is the kind of action a piece of command text asks for.
type Type string

const (
	TypeCreate   Type = "create"
	TypeMove     Type = "move"
	TypeComplete Type = "complete"
	TypePriority Type = "priority"
	TypeDue      Type = "due"
	TypeArchive  Type = "archive"
	TypeQuery    Type = "query"
	TypeUnknown  Type = "unknown"
)

// QueryKind narrows a query command.
type QueryKind string

const (
	QueryAll      QueryKind = "all"
	QueryPriority QueryKind = "priority"
	QueryDue      QueryKind = "due"
	QueryColumn   QueryKind = "column"
)

// MinConfidence is the classifier threshold below which a command is
// reported as unknown instead of being executed.
const MinConfidence = 0.4

// Params carries the structured values extracted for a command.
type Params struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	DueDate     *time.Time
	Labels      []string
	Column      string
	Query       QueryKind
	// BulkDone marks "archive all done tasks"-style commands.
	BulkDone bool
}

// ParsedCommand is the transient result of interpreting command text.
// It is produced and consumed within a single request and never stored.
type ParsedCommand struct {
	Type       Type
	Confidence float64
	// TaskRef is the free-text (or exact-id) reference to the target
	// task, empty for commands that do not target an existing task.
	TaskRef string
	Params  Params
}

// Describe renders the interpretation for the "what I understood" echo
// shown to the caller, including on failure.
func (c ParsedCommand) Describe() string {
	switch c.Type {
	case TypeCreate:
		return fmt.Sprintf("create task %q", c.Params.Title)
	case TypeMove:
		if c.Params.Column != "" {
			return fmt.Sprintf("move %q to %q", c.TaskRef, c.Params.Column)
		}
		return fmt.Sprintf("move %q", c.TaskRef)
	case TypeComplete:
		return fmt.Sprintf("complete %q", c.TaskRef)
	case TypePriority:
		return fmt.Sprintf("set priority of %q to %s", c.TaskRef, c.Params.Priority)
	case TypeDue:
		return fmt.Sprintf("set due date of %q", c.TaskRef)
	case TypeArchive:
		if c.Params.BulkDone {
			return "archive all done tasks"
		}
		return fmt.Sprintf("archive %q", c.TaskRef)
	case TypeQuery:
		switch c.Params.Query {
		case QueryPriority:
			return fmt.Sprintf("show %s tasks", c.Params.Priority)
		case QueryDue:
			return "show tasks that are due"
		case QueryColumn:
			return fmt.Sprintf("show tasks in %q", c.Params.Column)
		default:
			return "show tasks"
		}
	default:
		return "unrecognized command"
	}
}
