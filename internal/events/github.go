package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/flowboard/flowboard-api/internal/models"
)

var ErrUnsupportedEvent = errors.New("unsupported webhook event")

// PullRequest is the validated shape of a GitHub pull request payload.
// Webhook JSON is mapped into this once at the boundary; business logic
// never touches the raw payload.
type PullRequest struct {
	Number int
	Title  string
	Body   string
	Author string
	URL    string
	State  string
	Merged bool
	Draft  bool
	Labels []string
}

// Issue is the validated shape of a GitHub issue payload.
type Issue struct {
	Number int
	Title  string
	Body   string
	Author string
	URL    string
	State  string
	Labels []string
}

// Event is a domain event handed to the automation engine. Exactly one
// of PR, Issue or Task is set, depending on the trigger kind.
type Event struct {
	Trigger        models.RuleTrigger
	OrganizationID uint64
	BoardID        uint64
	PR             *PullRequest
	Issue          *Issue
	Task           *models.Task
}

// LinkStatus derives the external-link status for the event's subject.
func (e *Event) LinkStatus() models.LinkStatus {
	if e.PR != nil {
		switch {
		case e.PR.Merged:
			return models.LinkStatusMerged
		case e.PR.Draft:
			return models.LinkStatusDraft
		case e.PR.State == "open":
			return models.LinkStatusOpen
		case e.PR.State == "closed":
			return models.LinkStatusClosed
		}
	}
	if e.Issue != nil {
		switch e.Issue.State {
		case "open":
			return models.LinkStatusOpen
		case "closed":
			return models.LinkStatusClosed
		}
	}
	return models.LinkStatusUnknown
}

// Placeholders returns the template values available for rule action
// parameter substitution.
func (e *Event) Placeholders() map[string]string {
	vals := make(map[string]string)
	if e.PR != nil {
		vals["pr.number"] = strconv.Itoa(e.PR.Number)
		vals["pr.title"] = e.PR.Title
		vals["pr.body"] = e.PR.Body
		vals["pr.author"] = e.PR.Author
		vals["pr.url"] = e.PR.URL
	}
	if e.Issue != nil {
		vals["issue.number"] = strconv.Itoa(e.Issue.Number)
		vals["issue.title"] = e.Issue.Title
		vals["issue.body"] = e.Issue.Body
		vals["issue.author"] = e.Issue.Author
		vals["issue.url"] = e.Issue.URL
	}
	if e.Task != nil {
		vals["task.id"] = e.Task.PublicID
		vals["task.title"] = e.Task.Title
		vals["task.priority"] = string(e.Task.Priority)
	}
	return vals
}

// Wire shapes for the GitHub webhook body. Only the fields this core
// consumes are declared.

type githubUser struct {
	Login string `json:"login"`
}

type githubLabel struct {
	Name string `json:"name"`
}

type githubPullRequest struct {
	Number  int           `json:"number"`
	Title   string        `json:"title"`
	Body    string        `json:"body"`
	HTMLURL string        `json:"html_url"`
	State   string        `json:"state"`
	Merged  bool          `json:"merged"`
	Draft   bool          `json:"draft"`
	User    githubUser    `json:"user"`
	Labels  []githubLabel `json:"labels"`
}

type githubIssue struct {
	Number  int           `json:"number"`
	Title   string        `json:"title"`
	Body    string        `json:"body"`
	HTMLURL string        `json:"html_url"`
	State   string        `json:"state"`
	User    githubUser    `json:"user"`
	Labels  []githubLabel `json:"labels"`
}

type githubWebhook struct {
	Action      string             `json:"action"`
	PullRequest *githubPullRequest `json:"pull_request"`
	Issue       *githubIssue       `json:"issue"`
}

// ParseGitHub validates a webhook body and maps it to a typed Event.
// Sender authenticity is assumed verified upstream; tenant and board
// context come from the caller.
func ParseGitHub(body []byte, organizationID, boardID uint64) (*Event, error) {
	var hook githubWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}

	ev := &Event{OrganizationID: organizationID, BoardID: boardID}

	switch {
	case hook.PullRequest != nil:
		pr := hook.PullRequest
		ev.PR = &PullRequest{
			Number: pr.Number,
			Title:  pr.Title,
			Body:   pr.Body,
			Author: pr.User.Login,
			URL:    pr.HTMLURL,
			State:  pr.State,
			Merged: pr.Merged,
			Draft:  pr.Draft,
			Labels: labelNames(pr.Labels),
		}
		switch {
		case hook.Action == "opened" || hook.Action == "reopened" || hook.Action == "ready_for_review":
			ev.Trigger = models.TriggerPROpened
		case hook.Action == "closed" && pr.Merged:
			ev.Trigger = models.TriggerPRMerged
		case hook.Action == "closed":
			ev.Trigger = models.TriggerPRClosed
		default:
			return nil, fmt.Errorf("%w: pull_request %s", ErrUnsupportedEvent, hook.Action)
		}

	case hook.Issue != nil:
		is := hook.Issue
		ev.Issue = &Issue{
			Number: is.Number,
			Title:  is.Title,
			Body:   is.Body,
			Author: is.User.Login,
			URL:    is.HTMLURL,
			State:  is.State,
			Labels: labelNames(is.Labels),
		}
		switch hook.Action {
		case "opened", "reopened":
			ev.Trigger = models.TriggerIssueOpened
		case "closed":
			ev.Trigger = models.TriggerIssueClosed
		default:
			return nil, fmt.Errorf("%w: issue %s", ErrUnsupportedEvent, hook.Action)
		}

	default:
		return nil, fmt.Errorf("%w: no pull_request or issue object", ErrUnsupportedEvent)
	}

	return ev, nil
}

func labelNames(labels []githubLabel) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}
