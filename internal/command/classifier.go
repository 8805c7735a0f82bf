package command

import (
	"regexp"
	"strings"
)

// Cue patterns, in the priority order they are checked. The order is
// load-bearing: a sentence mentioning both "create" and "done" is a
// creation, because creation cues are checked first.
var (
	createCueRe   = regexp.MustCompile(`(?i)(?:\b(?:create|add)\s+(?:a\s+)?(?:new\s+)?task\b|^create\b)`)
	moveCueRe     = regexp.MustCompile(`(?i)\bmove\b`)
	completeCueRe = regexp.MustCompile(`(?i)(?:^(?:complete|finish(?:ed)?|done)\b|\bmark\b.+\b(?:done|completed?|finished)\b)`)
	priorityCueRe = regexp.MustCompile(`(?i)\b(?:set\s+)?priority\b|\bprioriti[sz]e\b`)
	dueCueRe      = regexp.MustCompile(`(?i)\b(?:due|deadline)\b`)
	archiveCueRe  = regexp.MustCompile(`(?i)\barchive\b`)
	queryCueRe    = regexp.MustCompile(`(?i)^(?:show|list|find|what|which|who|where|how)\b`)

	moveRefRe     = regexp.MustCompile(`(?i)\bmove\s+(?:task\s+)?(.+?)\s+(?:to|into)\b`)
	moveTailRe    = regexp.MustCompile(`(?i)\bmove\s+(?:task\s+)?(.+)$`)
	completeRefRe = regexp.MustCompile(`(?i)^(?:complete|finish(?:ed)?|done)\s+(?:task\s+)?(.+)$`)
	markDoneRefRe = regexp.MustCompile(`(?i)\bmark\s+(.+?)\s+(?:as\s+)?(?:done|completed?|finished)\b`)
	priorityOfRe  = regexp.MustCompile(`(?i)\bpriority\s+(?:of|for)\s+(.+?)\s+to\b`)
	prioritySetRe = regexp.MustCompile(`(?i)^set\s+(.+?)\s+(?:to\s+)?priority\b`)
	dueOfRe       = regexp.MustCompile(`(?i)\bdue(?:\s+date)?\s+(?:of|for)\s+(.+?)\s+(?:to|on)\b`)
	dueTailRe     = regexp.MustCompile(`(?i)^(?:set\s+)?(.+?)\s+(?:is\s+)?due\b`)
	bulkArchiveRe = regexp.MustCompile(`(?i)^archive\s+(?:all\s+)?(?:the\s+)?(?:done|completed|finished)\s+tasks?\s*[.!]?\s*$`)
	archiveRefRe  = regexp.MustCompile(`(?i)^archive\s+(?:task\s+)?(.+?)\s*[.!]?\s*$`)

	queryDueRe    = regexp.MustCompile(`(?i)\b(?:due|overdue)\b`)
	queryColumnRe = regexp.MustCompile(`(?i)\btasks?\s+in\s+(?:the\s+)?(.+?)\s*(?:column)?\s*[?.!]?\s*$`)
)

// Direct cues (create, archive, query) are meaningful on their own.
// Referential cues (move, complete, priority, due) start below the
// confidence threshold: without a task reference or a target fragment
// the sentence is too ambiguous to execute.
const (
	directCueBase      = 0.5
	referentialCueBase = 0.35
	fragmentBonus      = 0.1
	noCueConfidence    = 0.2
)

// Classify decides the command type from verb cues and fragment
// presence. Ties between competing cues are broken by the fixed check
// order: create, move, complete, priority, due, archive, query.
func Classify(text string, frags Fragments) ParsedCommand {
	text = strings.TrimSpace(text)
	cmd := ParsedCommand{Type: TypeUnknown, Confidence: noCueConfidence}
	cmd.Params.Priority = frags.Priority
	cmd.Params.DueDate = frags.DueDate
	cmd.Params.Labels = frags.Labels
	cmd.Params.Column = frags.Column

	switch {
	case createCueRe.MatchString(text):
		cmd.Type = TypeCreate
		cmd.Params.Title = frags.Title
		if cmd.Params.Priority == "" {
			cmd.Params.Priority = "p2"
		}

	case moveCueRe.MatchString(text):
		cmd.Type = TypeMove
		if m := moveRefRe.FindStringSubmatch(text); m != nil {
			cmd.TaskRef = strings.TrimSpace(m[1])
		} else if m := moveTailRe.FindStringSubmatch(text); m != nil {
			cmd.TaskRef = strings.TrimSpace(m[1])
		}

	case completeCueRe.MatchString(text):
		cmd.Type = TypeComplete
		if m := markDoneRefRe.FindStringSubmatch(text); m != nil {
			cmd.TaskRef = strings.TrimSpace(m[1])
		} else if m := completeRefRe.FindStringSubmatch(text); m != nil {
			cmd.TaskRef = strings.TrimSpace(m[1])
		}

	case priorityCueRe.MatchString(text):
		cmd.Type = TypePriority
		if m := priorityOfRe.FindStringSubmatch(text); m != nil {
			cmd.TaskRef = strings.TrimSpace(m[1])
		} else if m := prioritySetRe.FindStringSubmatch(text); m != nil {
			cmd.TaskRef = strings.TrimSpace(m[1])
		}

	case dueCueRe.MatchString(text):
		cmd.Type = TypeDue
		if m := dueOfRe.FindStringSubmatch(text); m != nil {
			cmd.TaskRef = strings.TrimSpace(m[1])
		} else if m := dueTailRe.FindStringSubmatch(text); m != nil {
			cmd.TaskRef = strings.TrimSpace(m[1])
		}

	case archiveCueRe.MatchString(text):
		cmd.Type = TypeArchive
		if bulkArchiveRe.MatchString(text) {
			cmd.Params.BulkDone = true
		} else if m := archiveRefRe.FindStringSubmatch(text); m != nil {
			cmd.TaskRef = strings.TrimSpace(m[1])
		}

	case queryCueRe.MatchString(text):
		cmd.Type = TypeQuery
		cmd.Params.Query, cmd.Params.Column = classifyQuery(text, frags)

	default:
		return cmd
	}

	cmd.Confidence = score(cmd, frags)
	if cmd.Confidence < MinConfidence {
		cmd.Type = TypeUnknown
	}
	return cmd
}

func classifyQuery(text string, frags Fragments) (QueryKind, string) {
	if frags.Priority != "" {
		return QueryPriority, frags.Column
	}
	if queryDueRe.MatchString(text) {
		return QueryDue, frags.Column
	}
	if m := queryColumnRe.FindStringSubmatch(text); m != nil {
		return QueryColumn, strings.TrimSpace(m[1])
	}
	if frags.Column != "" {
		return QueryColumn, frags.Column
	}
	return QueryAll, frags.Column
}

func score(cmd ParsedCommand, frags Fragments) float64 {
	conf := directCueBase
	switch cmd.Type {
	case TypeMove, TypeComplete, TypePriority, TypeDue:
		conf = referentialCueBase
	}
	if frags.Title != "" {
		conf += fragmentBonus
	}
	if frags.Priority != "" {
		conf += fragmentBonus
	}
	if frags.DueDate != nil {
		conf += fragmentBonus
	}
	if len(frags.Labels) > 0 {
		conf += fragmentBonus
	}
	if frags.Column != "" {
		conf += fragmentBonus
	}
	if cmd.TaskRef != "" {
		conf += fragmentBonus
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
