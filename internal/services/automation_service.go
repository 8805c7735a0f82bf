package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flowboard/flowboard-api/internal/command"
	"github.com/flowboard/flowboard-api/internal/config"
	"github.com/flowboard/flowboard-api/internal/events"
	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrUnknownRuleAction = errors.New("unknown rule action")

// AutomationService evaluates enabled tenant rules against domain
// events and applies the matched actions through the executor. Rules
// run one after another; a failure in one rule is isolated, logged,
// and never aborts its siblings or the webhook acknowledgment.
type AutomationService struct {
	ruleRepo     repository.RuleRepository
	taskRepo     repository.TaskRepository
	boardRepo    repository.BoardRepository
	linkRepo     repository.LinkRepository
	activityRepo repository.ActivityRepository
	executor     *CommandService
	agent        config.AgentIdentity
}

// NewAutomationService creates a new AutomationService
func NewAutomationService(
	ruleRepo repository.RuleRepository,
	taskRepo repository.TaskRepository,
	boardRepo repository.BoardRepository,
	linkRepo repository.LinkRepository,
	activityRepo repository.ActivityRepository,
	executor *CommandService,
	agent config.AgentIdentity,
) *AutomationService {
	return &AutomationService{
		ruleRepo:     ruleRepo,
		taskRepo:     taskRepo,
		boardRepo:    boardRepo,
		linkRepo:     linkRepo,
		activityRepo: activityRepo,
		executor:     executor,
		agent:        agent,
	}
}

// HandleEvent links task references found in external text, then runs
// every qualifying rule. It returns how many rules fired successfully.
func (s *AutomationService) HandleEvent(ev *events.Event) (int, error) {
	s.autoLink(ev)

	rules, err := s.ruleRepo.ListEnabled(ev.OrganizationID, ev.Trigger, ev.BoardID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rules: %w", err)
	}

	now := time.Now()
	fired := 0
	for _, rule := range rules {
		if err := s.executeRule(&rule, ev, now); err != nil {
			// A rule that matches but cannot resolve its target is
			// skipped without counting as a trigger.
			zap.L().Warn("automation rule failed",
				zap.Uint64("rule_id", rule.ID),
				zap.String("trigger", string(rule.Trigger)),
				zap.String("action", string(rule.Action)),
				zap.Error(err))
			continue
		}
		if err := s.ruleRepo.RecordTrigger(rule.ID, now); err != nil {
			zap.L().Error("failed to record rule trigger",
				zap.Uint64("rule_id", rule.ID),
				zap.Error(err))
		}
		fired++
	}

	return fired, nil
}

// autoLink scans the event's external text for task references and
// upserts one link per (task, external object). Linking failures are
// logged and do not affect rule dispatch.
func (s *AutomationService) autoLink(ev *events.Event) {
	var (
		text       string
		linkType   models.LinkType
		externalID string
		url        string
		title      string
	)
	switch {
	case ev.PR != nil:
		text = ev.PR.Title + "\n" + ev.PR.Body
		linkType = models.LinkGitHubPR
		externalID = strconv.Itoa(ev.PR.Number)
		url = ev.PR.URL
		title = ev.PR.Title
	case ev.Issue != nil:
		text = ev.Issue.Title + "\n" + ev.Issue.Body
		linkType = models.LinkGitHubIssue
		externalID = strconv.Itoa(ev.Issue.Number)
		url = ev.Issue.URL
		title = ev.Issue.Title
	default:
		return
	}

	for _, ref := range command.ExtractReferences(text) {
		task, err := s.resolveReference(ref, ev)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				zap.L().Warn("failed to resolve task reference",
					zap.String("ref", ref.Raw),
					zap.Error(err))
			}
			continue
		}

		link := &models.ExternalLink{
			OrganizationID: ev.OrganizationID,
			TaskID:         task.ID,
			LinkKey:        models.LinkKeyFor(linkType, externalID, task.ID),
			Type:           linkType,
			ExternalID:     externalID,
			URL:            url,
			Title:          title,
			Status:         ev.LinkStatus(),
		}
		if err := s.linkRepo.Upsert(link); err != nil {
			zap.L().Warn("failed to upsert external link",
				zap.String("link_key", link.LinkKey),
				zap.Error(err))
			continue
		}

		s.appendAgentActivity(task, models.ActivityLinked,
			fmt.Sprintf("linked %s #%s", linkType, externalID))
	}
}

func (s *AutomationService) resolveReference(ref command.Reference, ev *events.Event) (*models.Task, error) {
	if ref.PublicID != "" {
		return s.taskRepo.FindByPublicID(ev.OrganizationID, ref.PublicID)
	}

	board, err := s.boardRepo.FindByID(ev.BoardID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(board.Prefix, ref.Prefix) {
		return nil, gorm.ErrRecordNotFound
	}
	return s.taskRepo.FindBySeq(board.ID, ref.Seq)
}

func (s *AutomationService) executeRule(rule *models.AutomationRule, ev *events.Event, now time.Time) error {
	vals := ev.Placeholders()
	actor := models.Actor{Kind: models.ActorAgent, Name: s.agent.Name}
	param := func(key string) string {
		return substitute(rule.Params[key], vals)
	}

	switch rule.Action {
	case models.ActionCreateTask:
		title := param("title")
		if title == "" {
			title = defaultRuleTitle(ev)
		}
		_, err := s.executor.CreateTask(CreateTaskInput{
			OrganizationID: ev.OrganizationID,
			BoardID:        ev.BoardID,
			Title:          title,
			Description:    param("description"),
			Priority:       models.TaskPriority(rule.Params["priority"]),
			Labels:         splitLabels(rule.Params["labels"]),
			Column:         rule.Params["column"],
			Actor:          actor,
		})
		return err

	case models.ActionMoveTask:
		board, task, err := s.ruleTarget(rule, ev, param("task"))
		if err != nil {
			return err
		}
		target, err := command.ResolveColumn(rule.Params["column"], board.Columns)
		if err != nil {
			return err
		}
		from := columnTitle(board.Columns, task.ColumnID)
		return s.executor.MoveTask(task, target, from, actor)

	case models.ActionUpdateTask:
		_, task, err := s.ruleTarget(rule, ev, param("task"))
		if err != nil {
			return err
		}
		if p := models.TaskPriority(rule.Params["priority"]); p != "" {
			return s.executor.SetPriority(task, p, actor)
		}
		if d := rule.Params["due_in_days"]; d != "" {
			n, err := strconv.Atoi(d)
			if err != nil {
				return fmt.Errorf("invalid due_in_days %q", d)
			}
			due := now.AddDate(0, 0, n)
			return s.executor.SetDueDate(task, &due)
		}
		return fmt.Errorf("update_task rule %d has nothing to update", rule.ID)

	case models.ActionAddLabel:
		_, task, err := s.ruleTarget(rule, ev, param("task"))
		if err != nil {
			return err
		}
		label := param("label")
		if label == "" {
			return fmt.Errorf("add_label rule %d has no label", rule.ID)
		}
		return s.executor.AddLabel(task, label, actor)

	case models.ActionAddComment:
		_, task, err := s.ruleTarget(rule, ev, param("task"))
		if err != nil {
			return err
		}
		return s.executor.Comment(task, param("text"), actor)

	case models.ActionNotify:
		message := param("message")
		err := s.activityRepo.Create(&models.Activity{
			BoardID:        ev.BoardID,
			OrganizationID: ev.OrganizationID,
			Action:         models.ActivityNotified,
			ActorKind:      models.ActorAgent,
			ActorName:      s.agent.Name,
			Detail:         message,
		})
		if err != nil {
			return fmt.Errorf("failed to record notification: %w", err)
		}
		zap.L().Info("automation notification",
			zap.Uint64("rule_id", rule.ID),
			zap.String("message", message))
		return nil

	case models.ActionArchiveTask:
		_, task, err := s.ruleTarget(rule, ev, param("task"))
		if err != nil {
			return err
		}
		return s.executor.ArchiveTask(task, actor, now)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownRuleAction, rule.Action)
	}
}

// ruleTarget resolves the task a rule acts on from its "task" param
// (after placeholder substitution) against the board snapshot.
func (s *AutomationService) ruleTarget(rule *models.AutomationRule, ev *events.Event, ref string) (*models.Board, *models.Task, error) {
	board, err := s.boardRepo.FindWithColumns(ev.BoardID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load board: %w", err)
	}

	if ref == "" && ev.Task != nil {
		// Internal lifecycle events carry their subject task.
		return board, ev.Task, nil
	}

	snapshot, err := s.taskRepo.Snapshot(ev.BoardID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load task snapshot: %w", err)
	}
	task, err := command.ResolveTask(ref, snapshot)
	if err != nil {
		return nil, nil, err
	}
	return board, task, nil
}

func (s *AutomationService) appendAgentActivity(task *models.Task, action models.ActivityAction, detail string) {
	activity := &models.Activity{
		TaskID:         task.ID,
		BoardID:        task.BoardID,
		OrganizationID: task.OrganizationID,
		Action:         action,
		ActorKind:      models.ActorAgent,
		ActorName:      s.agent.Name,
		Detail:         detail,
	}
	if err := s.activityRepo.Create(activity); err != nil {
		zap.L().Warn("failed to append activity",
			zap.Uint64("task_id", task.ID),
			zap.Error(err))
	}
}

// substitute replaces {{key}} placeholders with event values. Unknown
// placeholders are left in place so misconfigured rules are visible in
// the output they produce.
func substitute(template string, vals map[string]string) string {
	if template == "" || !strings.Contains(template, "{{") {
		return template
	}
	for key, val := range vals {
		template = strings.ReplaceAll(template, "{{"+key+"}}", val)
	}
	return template
}

func splitLabels(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}

func defaultRuleTitle(ev *events.Event) string {
	switch {
	case ev.PR != nil:
		return fmt.Sprintf("Review PR #%d: %s", ev.PR.Number, ev.PR.Title)
	case ev.Issue != nil:
		return fmt.Sprintf("Issue #%d: %s", ev.Issue.Number, ev.Issue.Title)
	case ev.Task != nil:
		return ev.Task.Title
	default:
		return ""
	}
}

// columnTitle looks up a column's display title within a board.
func columnTitle(columns []models.Column, id uint64) string {
	for _, col := range columns {
		if col.ID == id {
			return col.Title
		}
	}
	return ""
}
