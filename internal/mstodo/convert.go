package mstodo

import (
	"strings"
	"time"

	"github.com/salaamdev/task-sync/internal/task"
)

// todoTask is the Graph wire shape, reduced to the fields this client
// reads and writes.
type todoTask struct {
	ID                   string               `json:"id,omitempty"`
	Title                string               `json:"title"`
	Body                 *itemBody            `json:"body,omitempty"`
	Status               string               `json:"status,omitempty"`
	Importance           string               `json:"importance,omitempty"`
	Categories           []string             `json:"categories,omitempty"`
	DueDateTime          *dateTimeTimeZone    `json:"dueDateTime,omitempty"`
	StartDateTime        *dateTimeTimeZone    `json:"startDateTime,omitempty"`
	ReminderDateTime     *dateTimeTimeZone    `json:"reminderDateTime,omitempty"`
	IsReminderOn         bool                 `json:"isReminderOn,omitempty"`
	Recurrence           *patternedRecurrence `json:"recurrence,omitempty"`
	ChecklistItems       []checklistItem      `json:"checklistItems,omitempty"`
	LastModifiedDateTime string               `json:"lastModifiedDateTime,omitempty"`
}

type itemBody struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type dateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type checklistItem struct {
	DisplayName string `json:"displayName"`
	IsChecked   bool   `json:"isChecked"`
}

type patternedRecurrence struct {
	Pattern recurrencePattern `json:"pattern"`
	Range   recurrenceRange   `json:"range"`
}

type recurrencePattern struct {
	Type       string   `json:"type"`
	Interval   int      `json:"interval"`
	DaysOfWeek []string `json:"daysOfWeek,omitempty"`
	DayOfMonth int      `json:"dayOfMonth,omitempty"`
	Month      int      `json:"month,omitempty"`
}

type recurrenceRange struct {
	Type string `json:"type"`
}

// graphTimeLayout is Graph's fraction-bearing local timestamp format.
const graphTimeLayout = "2006-01-02T15:04:05"

// parseGraphTime parses a dateTimeTimeZone. Graph appends seven fractional
// digits; non-UTC zones are resolved via the IANA name and converted.
func parseGraphTime(d *dateTimeTimeZone) *time.Time {
	if d == nil || d.DateTime == "" {
		return nil
	}
	s := d.DateTime
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	loc := time.UTC
	if d.TimeZone != "" && d.TimeZone != "UTC" {
		if l, err := time.LoadLocation(d.TimeZone); err == nil {
			loc = l
		}
	}
	ts, err := time.ParseInLocation(graphTimeLayout, s, loc)
	if err != nil {
		return nil
	}
	utc := ts.UTC()
	return &utc
}

func graphTime(t time.Time) *dateTimeTimeZone {
	return &dateTimeTimeZone{
		DateTime: t.UTC().Format(graphTimeLayout) + ".0000000",
		TimeZone: "UTC",
	}
}

// fromGraph converts a Graph task to the canonical shape. Graph has no
// deleted state on the wire, so the result is never status deleted.
func fromGraph(gt *todoTask) task.Task {
	t := task.Task{
		ID:         gt.ID,
		Title:      gt.Title,
		Importance: task.ParseImportance(gt.Importance),
		Categories: append([]string(nil), gt.Categories...),
	}
	if gt.Body != nil {
		t.Notes = strings.TrimRight(gt.Body.Content, "\r\n")
	}
	if gt.Status == "completed" {
		t.Status = task.StatusCompleted
	} else {
		t.Status = task.StatusActive
	}

	if gt.DueDateTime != nil && gt.DueDateTime.DateTime != "" {
		t.DueAt = task.DatePrefix(gt.DueDateTime.DateTime)
		if hhmm := timeOfDay(gt.DueDateTime.DateTime); hhmm != "00:00" {
			t.DueTime = hhmm
		}
	}
	t.StartAt = parseGraphTime(gt.StartDateTime)
	if gt.IsReminderOn {
		t.Reminder = parseGraphTime(gt.ReminderDateTime)
	}
	if gt.Recurrence != nil {
		t.Recurrence = recurrenceToRule(gt.Recurrence)
	}
	for _, item := range gt.ChecklistItems {
		t.Steps = append(t.Steps, task.Step{Text: item.DisplayName, Checked: item.IsChecked})
	}
	if gt.LastModifiedDateTime != "" {
		if ts, err := time.Parse(time.RFC3339, gt.LastModifiedDateTime); err == nil {
			t.UpdatedAt = ts.UTC()
		}
	}

	t.Normalize()
	return t
}

// timeOfDay extracts HH:MM from a Graph local timestamp.
func timeOfDay(s string) string {
	if len(s) >= 16 && s[10] == 'T' {
		return s[11:16]
	}
	return "00:00"
}

// toGraph converts a canonical task to the wire shape. The due time of
// day, when set, is folded into dueDateTime since Graph has no separate
// field for it.
func toGraph(t task.Task) *todoTask {
	gt := &todoTask{
		Title:      t.Title,
		Importance: string(t.Importance),
		Categories: t.Categories,
		Body:       &itemBody{Content: t.Notes, ContentType: "text"},
	}
	if gt.Importance == "" {
		gt.Importance = string(task.ImportanceNormal)
	}
	if t.Status == task.StatusCompleted {
		gt.Status = "completed"
	} else {
		gt.Status = "notStarted"
	}

	if t.DueAt != "" {
		hhmm := t.DueTime
		if hhmm == "" {
			hhmm = "00:00"
		}
		gt.DueDateTime = &dateTimeTimeZone{
			DateTime: t.DueAt + "T" + hhmm + ":00.0000000",
			TimeZone: "UTC",
		}
	}
	if t.StartAt != nil {
		gt.StartDateTime = graphTime(*t.StartAt)
	}
	if t.Reminder != nil {
		gt.ReminderDateTime = graphTime(*t.Reminder)
		gt.IsReminderOn = true
	}
	if t.Recurrence != "" {
		if rec := ruleToRecurrence(t.Recurrence); rec != nil {
			gt.Recurrence = rec
		}
	}
	for _, s := range t.Steps {
		gt.ChecklistItems = append(gt.ChecklistItems, checklistItem{DisplayName: s.Text, IsChecked: s.Checked})
	}
	return gt
}
