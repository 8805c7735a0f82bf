package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flowboard/flowboard-api/internal/models"
)

var (
	ErrTaskNotFound   = errors.New("no task matches the reference")
	ErrColumnNotFound = errors.New("no column matches the name")
)

// columnFamilies maps logical bucket names to the title keywords that
// identify them. Column meaning is inferred from free-text titles at
// resolution time; a Done column titled "Shipped" will not resolve.
var columnFamilies = []struct {
	name     string
	keywords []string
}{
	{"todo", []string{"to do", "todo", "backlog"}},
	{"in_progress", []string{"in progress", "doing", "progress"}},
	{"review", []string{"review", "testing"}},
	{"done", []string{"done", "complete", "finished"}},
}

// ResolveTask finds the best match for a reference within a board's
// non-archived task snapshot. Tiers, first match wins: exact public id,
// exact case-insensitive title, case-insensitive substring containment
// in either direction. The snapshot is expected in creation order
// (ascending id), which makes the substring tie-break deterministic:
// the oldest qualifying task wins.
func ResolveTask(ref string, snapshot []models.Task) (*models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrTaskNotFound)
	}

	for i := range snapshot {
		if snapshot[i].PublicID == ref {
			return &snapshot[i], nil
		}
	}

	lower := strings.ToLower(ref)
	for i := range snapshot {
		if strings.ToLower(snapshot[i].Title) == lower {
			return &snapshot[i], nil
		}
	}

	for i := range snapshot {
		title := strings.ToLower(snapshot[i].Title)
		if strings.Contains(title, lower) || strings.Contains(lower, title) {
			return &snapshot[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, ref)
}

// ResolveColumn maps a requested bucket name to a concrete column.
// Direct substring matching against column titles is tried first, then
// the keyword-family table.
func ResolveColumn(name string, columns []models.Column) (*models.Column, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrColumnNotFound)
	}

	for i := range columns {
		title := strings.ToLower(columns[i].Title)
		if strings.Contains(title, name) || strings.Contains(name, title) {
			return &columns[i], nil
		}
	}

	for _, family := range columnFamilies {
		if !familyMatches(family.keywords, name) {
			continue
		}
		if col := firstWithKeyword(columns, family.keywords); col != nil {
			return col, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// ResolveDoneColumn finds the column a completion intent targets.
func ResolveDoneColumn(columns []models.Column) (*models.Column, error) {
	if col := firstWithKeyword(columns, []string{"done", "complete", "finished"}); col != nil {
		return col, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, "done")
}

// ResolveDefaultColumn picks where new tasks land when no column was
// requested: the todo-family column, else the board's first column.
func ResolveDefaultColumn(columns []models.Column) *models.Column {
	if col := firstWithKeyword(columns, []string{"to do", "todo", "backlog"}); col != nil {
		return col
	}
	if len(columns) > 0 {
		return &columns[0]
	}
	return nil
}

func familyMatches(keywords []string, name string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) || strings.Contains(kw, name) {
			return true
		}
	}
	return false
}

func firstWithKeyword(columns []models.Column, keywords []string) *models.Column {
	for i := range columns {
		title := strings.ToLower(columns[i].Title)
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				return &columns[i]
			}
		}
	}
	return nil
}
