package events

import (
	"testing"

	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHub_PullRequestOpened(t *testing.T) {
	body := []byte(`{
		"action": "opened",
		"pull_request": {
			"number": 42,
			"title": "Fix login bug [FLOW-7]",
			"body": "Closes task_aabbccdd00112233",
			"html_url": "https://github.com/acme/repo/pull/42",
			"state": "open",
			"merged": false,
			"draft": false,
			"user": {"login": "octocat"},
			"labels": [{"name": "bug"}]
		}
	}`)

	ev, err := ParseGitHub(body, 3, 9)
	require.NoError(t, err)

	assert.Equal(t, models.TriggerPROpened, ev.Trigger)
	assert.Equal(t, uint64(3), ev.OrganizationID)
	assert.Equal(t, uint64(9), ev.BoardID)
	require.NotNil(t, ev.PR)
	assert.Equal(t, 42, ev.PR.Number)
	assert.Equal(t, "octocat", ev.PR.Author)
	assert.Equal(t, []string{"bug"}, ev.PR.Labels)
	assert.Equal(t, models.LinkStatusOpen, ev.LinkStatus())
}

func TestParseGitHub_ClosedMergedIsMerge(t *testing.T) {
	body := []byte(`{
		"action": "closed",
		"pull_request": {"number": 1, "title": "t", "state": "closed", "merged": true, "user": {"login": "x"}}
	}`)

	ev, err := ParseGitHub(body, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TriggerPRMerged, ev.Trigger)
	assert.Equal(t, models.LinkStatusMerged, ev.LinkStatus())
}

func TestParseGitHub_ClosedUnmergedIsClose(t *testing.T) {
	body := []byte(`{
		"action": "closed",
		"pull_request": {"number": 1, "title": "t", "state": "closed", "merged": false, "user": {"login": "x"}}
	}`)

	ev, err := ParseGitHub(body, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TriggerPRClosed, ev.Trigger)
	assert.Equal(t, models.LinkStatusClosed, ev.LinkStatus())
}

func TestParseGitHub_IssueEvents(t *testing.T) {
	body := []byte(`{
		"action": "opened",
		"issue": {"number": 7, "title": "Crash on load", "state": "open", "user": {"login": "x"}}
	}`)

	ev, err := ParseGitHub(body, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TriggerIssueOpened, ev.Trigger)
	require.NotNil(t, ev.Issue)
	assert.Equal(t, 7, ev.Issue.Number)

	body = []byte(`{
		"action": "closed",
		"issue": {"number": 7, "title": "Crash on load", "state": "closed", "user": {"login": "x"}}
	}`)
	ev, err = ParseGitHub(body, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TriggerIssueClosed, ev.Trigger)
}

func TestParseGitHub_UnsupportedEvents(t *testing.T) {
	_, err := ParseGitHub([]byte(`{"action": "labeled", "pull_request": {"number": 1, "user": {"login": "x"}}}`), 1, 1)
	assert.ErrorIs(t, err, ErrUnsupportedEvent)

	_, err = ParseGitHub([]byte(`{"action": "created"}`), 1, 1)
	assert.ErrorIs(t, err, ErrUnsupportedEvent)
}

func TestParseGitHub_InvalidJSON(t *testing.T) {
	_, err := ParseGitHub([]byte(`{`), 1, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedEvent)
}

func TestEventPlaceholders(t *testing.T) {
	ev := &Event{
		PR: &PullRequest{Number: 42, Title: "Fix login", Author: "octocat", URL: "u"},
	}
	vals := ev.Placeholders()
	assert.Equal(t, "42", vals["pr.number"])
	assert.Equal(t, "Fix login", vals["pr.title"])
	assert.Equal(t, "octocat", vals["pr.author"])

	ev = &Event{Task: &models.Task{PublicID: "task_0011223344556677", Title: "Ship it", Priority: models.PriorityHigh}}
	vals = ev.Placeholders()
	assert.Equal(t, "task_0011223344556677", vals["task.id"])
	assert.Equal(t, "p1", vals["task.priority"])
}

func TestLinkStatus_Draft(t *testing.T) {
	ev := &Event{PR: &PullRequest{State: "open", Draft: true}}
	assert.Equal(t, models.LinkStatusDraft, ev.LinkStatus())
}
