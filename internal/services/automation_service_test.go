package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/flowboard/flowboard-api/internal/config"
	"github.com/flowboard/flowboard-api/internal/events"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type automationTestEnv struct {
	*commandTestEnv
	ruleRepo   repository.RuleRepository
	linkRepo   repository.LinkRepository
	automation *AutomationService
}

func setupAutomationTestEnv(t *testing.T) *automationTestEnv {
	t.Helper()

	base := setupCommandTestEnv(t)
	ruleRepo := repository.NewRuleRepository(base.db)
	linkRepo := repository.NewLinkRepository(base.db)
	boardRepo := repository.NewBoardRepository(base.db)

	automation := NewAutomationService(
		ruleRepo,
		base.taskRepo,
		boardRepo,
		linkRepo,
		base.activityRepo,
		base.executor,
		config.AgentIdentity{Name: "Autopilot"},
	)

	return &automationTestEnv{
		commandTestEnv: base,
		ruleRepo:       ruleRepo,
		linkRepo:       linkRepo,
		automation:     automation,
	}
}

func (env *automationTestEnv) addRule(t *testing.T, rule models.AutomationRule) *models.AutomationRule {
	t.Helper()
	rule.OrganizationID = env.org.ID
	if rule.Name == "" {
		rule.Name = fmt.Sprintf("%s -> %s", rule.Trigger, rule.Action)
	}
	rule.Enabled = true
	require.NoError(t, env.ruleRepo.Create(&rule))
	return &rule
}

func (env *automationTestEnv) prOpened(number int, title, body string) *events.Event {
	return &events.Event{
		Trigger:        models.TriggerPROpened,
		OrganizationID: env.org.ID,
		BoardID:        env.board.ID,
		PR: &events.PullRequest{
			Number: number,
			Title:  title,
			Body:   body,
			Author: "octocat",
			URL:    fmt.Sprintf("https://github.com/acme/repo/pull/%d", number),
			State:  "open",
		},
	}
}

func TestAutomation_PROpenedCreatesReviewTask(t *testing.T) {
	env := setupAutomationTestEnv(t)
	rule := env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerPROpened,
		Action:  models.ActionCreateTask,
		Params: map[string]string{
			"title":  "Review PR #{{pr.number}}: {{pr.title}}",
			"column": "review",
		},
	})

	fired, err := env.automation.HandleEvent(env.prOpened(42, "Fix login bug", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	tasks, _, err := env.taskRepo.List(repository.TaskFilter{OrganizationID: env.org.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Review PR #42: Fix login bug", tasks[0].Title)
	assert.Equal(t, env.column(t, "Review").ID, tasks[0].ColumnID)

	// Success is what increments the counter.
	fresh, err := env.ruleRepo.FindByID(rule.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), fresh.TriggerCount)
	assert.NotNil(t, fresh.LastTriggeredAt)

	activities := env.taskActivities(t, tasks[0].ID)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActorAgent, activities[0].ActorKind)
	assert.Equal(t, "Autopilot", activities[0].ActorName)
}

func TestAutomation_FailedRuleIsIsolatedAndNotCounted(t *testing.T) {
	env := setupAutomationTestEnv(t)

	// First rule targets a column that does not exist and fails; the
	// second still runs.
	broken := env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerPROpened,
		Action:  models.ActionMoveTask,
		Params:  map[string]string{"task": "missing", "column": "icebox"},
	})
	working := env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerPROpened,
		Action:  models.ActionNotify,
		Params:  map[string]string{"message": "PR {{pr.number}} opened"},
	})

	fired, err := env.automation.HandleEvent(env.prOpened(7, "t", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	freshBroken, err := env.ruleRepo.FindByID(broken.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), freshBroken.TriggerCount)
	assert.Nil(t, freshBroken.LastTriggeredAt)

	freshWorking, err := env.ruleRepo.FindByID(working.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), freshWorking.TriggerCount)
}

func TestAutomation_PlaceholderSubstitution(t *testing.T) {
	env := setupAutomationTestEnv(t)
	env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerPROpened,
		Action:  models.ActionNotify,
		Params:  map[string]string{"message": "PR {{pr.number}} by {{pr.author}} ({{unknown}})"},
	})

	_, err := env.automation.HandleEvent(env.prOpened(42, "t", ""))
	require.NoError(t, err)

	activities, err := env.activityRepo.ListByBoard(env.board.ID, 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityNotified, activities[0].Action)
	// Unknown placeholders stay visible instead of vanishing.
	assert.Equal(t, "PR 42 by octocat ({{unknown}})", activities[0].Detail)
}

func TestAutomation_BoardScopedRules(t *testing.T) {
	env := setupAutomationTestEnv(t)

	otherBoard := &models.Board{
		OrganizationID: env.org.ID,
		Name:           "Design",
		Prefix:         "DSG",
		Columns:        []models.Column{{Title: "To Do", Position: 0}},
	}
	require.NoError(t, repository.NewBoardRepository(env.db).Create(otherBoard))

	env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerPROpened,
		Action:  models.ActionNotify,
		BoardID: &otherBoard.ID,
		Params:  map[string]string{"message": "scoped"},
	})
	env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerPROpened,
		Action:  models.ActionNotify,
		Params:  map[string]string{"message": "tenant wide"},
	})

	fired, err := env.automation.HandleEvent(env.prOpened(1, "t", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestAutomation_DisabledRuleSkipped(t *testing.T) {
	env := setupAutomationTestEnv(t)
	rule := env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerPROpened,
		Action:  models.ActionNotify,
		Params:  map[string]string{"message": "m"},
	})
	rule.Enabled = false
	require.NoError(t, env.ruleRepo.Update(rule))

	fired, err := env.automation.HandleEvent(env.prOpened(1, "t", ""))
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
}

func TestAutomation_TriggerMismatchSkipped(t *testing.T) {
	env := setupAutomationTestEnv(t)
	env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerPRMerged,
		Action:  models.ActionNotify,
		Params:  map[string]string{"message": "m"},
	})

	fired, err := env.automation.HandleEvent(env.prOpened(1, "t", ""))
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
}

func TestAutomation_AutoLinksReferencedTasks(t *testing.T) {
	env := setupAutomationTestEnv(t)
	byID := env.execute(t, "create task payment flow")
	bySeq := env.execute(t, "create task search indexing")

	body := fmt.Sprintf("Fixes %s and [ENG-%d]", byID.Task.PublicID, bySeq.Task.Seq)
	_, err := env.automation.HandleEvent(env.prOpened(42, "Fix things", body))
	require.NoError(t, err)

	links, err := env.linkRepo.ListByTask(byID.Task.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, models.LinkGitHubPR, links[0].Type)
	assert.Equal(t, "42", links[0].ExternalID)
	assert.Equal(t, models.LinkStatusOpen, links[0].Status)

	links, err = env.linkRepo.ListByTask(bySeq.Task.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)

	activities := env.taskActivities(t, byID.Task.ID)
	require.Len(t, activities, 2)
	assert.Equal(t, models.ActivityLinked, activities[0].Action)
	assert.Equal(t, models.ActorAgent, activities[0].ActorKind)
}

func TestAutomation_RelinkUpdatesInsteadOfDuplicating(t *testing.T) {
	env := setupAutomationTestEnv(t)
	created := env.execute(t, "create task payment flow")

	body := "Fixes " + created.Task.PublicID

	_, err := env.automation.HandleEvent(env.prOpened(42, "Fix payment", body))
	require.NoError(t, err)

	merged := env.prOpened(42, "Fix payment", body)
	merged.Trigger = models.TriggerPRMerged
	merged.PR.State = "closed"
	merged.PR.Merged = true
	_, err = env.automation.HandleEvent(merged)
	require.NoError(t, err)

	links, err := env.linkRepo.ListByTask(created.Task.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, models.LinkStatusMerged, links[0].Status)
}

func TestAutomation_ShorthandRequiresMatchingPrefix(t *testing.T) {
	env := setupAutomationTestEnv(t)
	created := env.execute(t, "create task payment flow")

	body := fmt.Sprintf("[OPS-%d]", created.Task.Seq)
	_, err := env.automation.HandleEvent(env.prOpened(1, "t", body))
	require.NoError(t, err)

	links, err := env.linkRepo.ListByTask(created.Task.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestAutomation_LifecycleEventActsOnSubjectTask(t *testing.T) {
	env := setupAutomationTestEnv(t)
	created := env.execute(t, "create task release notes")
	env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerTaskCompleted,
		Action:  models.ActionAddLabel,
		Params:  map[string]string{"label": "shipped"},
	})

	fired, err := env.automation.HandleEvent(&events.Event{
		Trigger:        models.TriggerTaskCompleted,
		OrganizationID: env.org.ID,
		BoardID:        env.board.ID,
		Task:           created.Task,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	fresh, err := env.taskRepo.FindByID(created.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"shipped"}, fresh.Labels)
}

func TestAutomation_UpdateTaskDueInDays(t *testing.T) {
	env := setupAutomationTestEnv(t)
	created := env.execute(t, "create task follow up")
	env.addRule(t, models.AutomationRule{
		Trigger: models.TriggerIssueOpened,
		Action:  models.ActionUpdateTask,
		Params:  map[string]string{"task": "follow up", "due_in_days": "2"},
	})

	fired, err := env.automation.HandleEvent(&events.Event{
		Trigger:        models.TriggerIssueOpened,
		OrganizationID: env.org.ID,
		BoardID:        env.board.ID,
		Issue:          &events.Issue{Number: 5, Title: "t", State: "open"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	fresh, err := env.taskRepo.FindByID(created.Task.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.DueDate)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 2), *fresh.DueDate, time.Minute)
}
