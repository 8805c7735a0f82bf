package command

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/flowboard/flowboard-api/internal/models"
)

// Fragments is the bag of structured values pulled out of raw command
// text. Absent fragments are zero values; extraction never fails.
type Fragments struct {
	Title    string
	Priority models.TaskPriority
	DueDate  *time.Time
	Labels   []string
	Column   string
}

var (
	quotedTitleRe = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	markerTitleRe = regexp.MustCompile(`(?i)(?:create|add)\s+(?:a\s+)?(?:new\s+)?task[:\s]\s*(.+)`)
	// fragmentCueRe marks comma segments that belong to other
	// fragments, not the title.
	fragmentCueRe = regexp.MustCompile(`(?i)^(?:priority|due|by|labels?|tags?|to|into|in)\b`)

	priorityTagRe    = regexp.MustCompile(`(?i)\bp([0-3])\b`)
	priorityPhraseRe = regexp.MustCompile(`(?i)\bpriority[:\s]+(critical|urgent|highest|high|medium|normal|low)\b|\b(critical|urgent|highest|high|medium|normal|low)\s+priority\b`)
	priorityQueryRe  = regexp.MustCompile(`(?i)\b(critical|urgent|highest|high|medium|normal|low)\s+tasks?\b`)

	todayRe       = regexp.MustCompile(`(?i)\btoday\b`)
	tomorrowRe    = regexp.MustCompile(`(?i)\btomorrow\b`)
	nextWeekdayRe = regexp.MustCompile(`(?i)\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	inDaysRe      = regexp.MustCompile(`(?i)\bin\s+(\d+)\s+days?\b`)
	absoluteDateRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

	labelsRe = regexp.MustCompile(`(?i)\b(?:labels?|tags?)[:\s]+([A-Za-z0-9_\-]+(?:\s*,\s*[A-Za-z0-9_\-]+)*)`)
	columnRe = regexp.MustCompile(`(?i)\b(?:to|into)\s+(?:the\s+)?([^,".]+?)(?:\s+column)?\s*(?:[,.]|$)`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var priorityAliases = map[string]models.TaskPriority{
	"critical": models.PriorityCritical,
	"urgent":   models.PriorityCritical,
	"highest":  models.PriorityHigh,
	"high":     models.PriorityHigh,
	"medium":   models.PriorityMedium,
	"normal":   models.PriorityMedium,
	"low":      models.PriorityLow,
}

// ExtractFragments scans raw text for structured fragments. Relative
// dates are computed from now so callers control the clock.
func ExtractFragments(text string, now time.Time) Fragments {
	frags := Fragments{
		Title:   extractTitle(text),
		DueDate: extractDueDate(text, now),
		Labels:  extractLabels(text),
		Column:  extractColumn(text),
	}
	frags.Priority = extractPriority(text, frags.Title)

	// A create command phrased as "add task buy milk to backlog" puts
	// the column cue inside the marker remainder; trim it off the title.
	if frags.Column != "" {
		for _, cue := range []string{" to ", " into "} {
			if idx := strings.LastIndex(strings.ToLower(frags.Title), cue+strings.ToLower(frags.Column)); idx >= 0 {
				frags.Title = strings.TrimSpace(frags.Title[:idx])
				break
			}
		}
	}

	return frags
}

func extractTitle(text string) string {
	if m := quotedTitleRe.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[2])
	}

	m := markerTitleRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	// Keep leading comma segments until one starts with a fragment cue
	// ("priority high", "due tomorrow", ...), which belongs elsewhere.
	segments := strings.Split(m[1], ",")
	var kept []string
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if i > 0 && fragmentCueRe.MatchString(seg) {
			break
		}
		kept = append(kept, seg)
	}

	return strings.TrimSpace(strings.Join(kept, ", "))
}

func extractPriority(text, title string) models.TaskPriority {
	// Do not read priority words out of an explicitly quoted title.
	if strings.Contains(text, `"`+title+`"`) || strings.Contains(text, `'`+title+`'`) {
		text = strings.Replace(text, title, "", 1)
	}

	if m := priorityTagRe.FindStringSubmatch(text); m != nil {
		return models.TaskPriority("p" + m[1])
	}
	if m := priorityPhraseRe.FindStringSubmatch(text); m != nil {
		word := m[1]
		if word == "" {
			word = m[2]
		}
		return priorityAliases[strings.ToLower(word)]
	}
	if m := priorityQueryRe.FindStringSubmatch(text); m != nil {
		return priorityAliases[strings.ToLower(m[1])]
	}
	return ""
}

func extractDueDate(text string, now time.Time) *time.Time {
	day := func(offset int) *time.Time {
		d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, offset)
		return &d
	}

	if todayRe.MatchString(text) {
		return day(0)
	}
	if tomorrowRe.MatchString(text) {
		return day(1)
	}
	if m := nextWeekdayRe.FindStringSubmatch(text); m != nil {
		target := weekdays[strings.ToLower(m[1])]
		delta := (int(target) - int(now.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return day(delta)
	}
	if m := inDaysRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return day(n)
		}
	}
	if m := absoluteDateRe.FindStringSubmatch(text); m != nil {
		d, err := time.ParseInLocation("2006-01-02", m[1], now.Location())
		if err == nil {
			return &d
		}
	}
	return nil
}

func extractLabels(text string) []string {
	m := labelsRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}

func extractColumn(text string) string {
	m := columnRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
