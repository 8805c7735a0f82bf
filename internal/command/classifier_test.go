package command

import (
	"testing"
	"time"

	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classifyNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func classify(text string) ParsedCommand {
	return Classify(text, ExtractFragments(text, classifyNow))
}

func TestClassify_CreateWithFragments(t *testing.T) {
	cmd := classify("create task: Fix login bug, priority high, due tomorrow")

	require.Equal(t, TypeCreate, cmd.Type)
	assert.Equal(t, "Fix login bug", cmd.Params.Title)
	assert.Equal(t, models.PriorityHigh, cmd.Params.Priority)
	require.NotNil(t, cmd.Params.DueDate)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), *cmd.Params.DueDate)
	assert.GreaterOrEqual(t, cmd.Confidence, MinConfidence)
}

func TestClassify_CreateDefaultsPriority(t *testing.T) {
	cmd := classify("create task write release notes")

	require.Equal(t, TypeCreate, cmd.Type)
	assert.Equal(t, models.PriorityMedium, cmd.Params.Priority)
}

// Creation cues outrank completion cues, so a title mentioning "done"
// still creates.
func TestClassify_CreateBeatsComplete(t *testing.T) {
	cmd := classify("create task mark onboarding flow done")

	assert.Equal(t, TypeCreate, cmd.Type)
}

func TestClassify_Move(t *testing.T) {
	cmd := classify("move login fix to review")

	require.Equal(t, TypeMove, cmd.Type)
	assert.Equal(t, "login fix", cmd.TaskRef)
	assert.Equal(t, "review", cmd.Params.Column)
	// referential cue 0.35 + task ref 0.1 + column 0.1
	assert.InDelta(t, 0.55, cmd.Confidence, 0.001)
}

// A referential cue with nothing to act on stays below the confidence
// threshold and falls back to unknown instead of executing.
func TestClassify_ReferentialCueAloneIsUnknown(t *testing.T) {
	for _, text := range []string{"move", "prioritize"} {
		t.Run(text, func(t *testing.T) {
			cmd := classify(text)
			assert.Equal(t, TypeUnknown, cmd.Type)
			assert.Less(t, cmd.Confidence, MinConfidence)
		})
	}
}

func TestClassify_Complete(t *testing.T) {
	tests := []struct {
		text string
		ref  string
	}{
		{"complete login fix", "login fix"},
		{"finish quarterly report", "quarterly report"},
		{"mark quarterly report as done", "quarterly report"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd := classify(tt.text)
			require.Equal(t, TypeComplete, cmd.Type)
			assert.Equal(t, tt.ref, cmd.TaskRef)
		})
	}
}

func TestClassify_Priority(t *testing.T) {
	cmd := classify("set priority of login fix to p1")

	require.Equal(t, TypePriority, cmd.Type)
	assert.Equal(t, "login fix", cmd.TaskRef)
	assert.Equal(t, models.PriorityHigh, cmd.Params.Priority)
}

func TestClassify_Due(t *testing.T) {
	cmd := classify("set due date of login fix to next friday")

	require.Equal(t, TypeDue, cmd.Type)
	assert.Equal(t, "login fix", cmd.TaskRef)
	require.NotNil(t, cmd.Params.DueDate)
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), *cmd.Params.DueDate)
}

func TestClassify_ArchiveSingle(t *testing.T) {
	cmd := classify("archive task old landing page")

	require.Equal(t, TypeArchive, cmd.Type)
	assert.False(t, cmd.Params.BulkDone)
	assert.Equal(t, "old landing page", cmd.TaskRef)
}

func TestClassify_ArchiveAllDone(t *testing.T) {
	for _, text := range []string{
		"archive all done tasks",
		"archive the completed tasks",
		"archive finished tasks.",
	} {
		t.Run(text, func(t *testing.T) {
			cmd := classify(text)
			require.Equal(t, TypeArchive, cmd.Type)
			assert.True(t, cmd.Params.BulkDone)
			assert.Empty(t, cmd.TaskRef)
		})
	}
}

func TestClassify_Queries(t *testing.T) {
	cmd := classify("show high tasks")
	require.Equal(t, TypeQuery, cmd.Type)
	assert.Equal(t, QueryPriority, cmd.Params.Query)
	assert.Equal(t, models.PriorityHigh, cmd.Params.Priority)

	cmd = classify("list tasks in review")
	require.Equal(t, TypeQuery, cmd.Type)
	assert.Equal(t, QueryColumn, cmd.Params.Query)
	assert.Equal(t, "review", cmd.Params.Column)

	cmd = classify("show all tasks")
	require.Equal(t, TypeQuery, cmd.Type)
	assert.Equal(t, QueryAll, cmd.Params.Query)
}

// "show tasks due today" hits the due cue before the query cue. The
// fixed cue order keeps interpretation deterministic even when it is
// debatable.
func TestClassify_DueCueOutranksQuery(t *testing.T) {
	cmd := classify("show tasks due today")
	assert.Equal(t, TypeDue, cmd.Type)
}

func TestClassify_UnknownWithoutCue(t *testing.T) {
	cmd := classify("hello there general kenobi")

	assert.Equal(t, TypeUnknown, cmd.Type)
	assert.InDelta(t, 0.2, cmd.Confidence, 0.001)
	assert.Less(t, cmd.Confidence, MinConfidence)
}

func TestClassify_ConfidenceCapped(t *testing.T) {
	cmd := classify(`create task "Fix login" priority high due tomorrow labels: auth, backend to backlog`)

	require.Equal(t, TypeCreate, cmd.Type)
	assert.LessOrEqual(t, cmd.Confidence, 1.0)
}
