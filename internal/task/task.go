// Package task defines the canonical task model shared by every provider
// and by the reconciliation engine. A Task is the merged logical view of
// one to-do item; providers translate their native records into this shape
// at the port boundary.
package task

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
)

// Importance mirrors the three-level priority both providers agree on.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// Step is one checklist entry. Order is meaningful.
type Step struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Task is the canonical task shape. ID carries the provider-local id when a
// Task crosses the provider port; canonical baselines stored in sync state
// have ID cleared.
type Task struct {
	ID         string     `json:"id,omitempty"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes,omitempty"`
	DueAt      string     `json:"dueAt,omitempty"`   // date-only, YYYY-MM-DD
	DueTime    string     `json:"dueTime,omitempty"` // HH:MM, 24h
	Status     Status     `json:"status,omitempty"`
	Reminder   *time.Time `json:"reminder,omitempty"`
	Recurrence string     `json:"recurrence,omitempty"` // opaque rule string (RRULE)
	Categories []string   `json:"categories,omitempty"`
	Importance Importance `json:"importance,omitempty"`
	Steps      []Step     `json:"steps,omitempty"`
	StartAt    *time.Time `json:"startAt,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Normalize trims the title, truncates DueAt to its date prefix, and fills
// the status/importance defaults. Providers call this on everything they
// return so the engine never sees provider round-trip noise.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.DueAt = DatePrefix(t.DueAt)
	if t.Status == "" {
		t.Status = StatusActive
	}
	if t.Importance == "" {
		t.Importance = ImportanceNormal
	}
}

// Clone returns a deep copy. Slices and time pointers are duplicated so the
// copy can be mutated without aliasing the source.
func (t Task) Clone() Task {
	out := t
	if t.Categories != nil {
		out.Categories = append([]string(nil), t.Categories...)
	}
	if t.Steps != nil {
		out.Steps = append([]Step(nil), t.Steps...)
	}
	out.Reminder = cloneTime(t.Reminder)
	out.StartAt = cloneTime(t.StartAt)
	return out
}

// Deleted reports whether the task is in the terminal state. Completed is
// not terminal: completion propagates like any other field change.
func (t Task) Deleted() bool {
	return t.Status == StatusDeleted
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// DatePrefix reduces a date or timestamp string to its YYYY-MM-DD prefix.
// Providers disagree about the time-of-day portion of due dates (Google
// Tasks discards it, Graph fills midnight in the task's time zone), so only
// the date prefix is significant.
func DatePrefix(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// ParseStatus maps a stored string onto a Status, defaulting to active.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusCompleted:
		return StatusCompleted
	case StatusDeleted:
		return StatusDeleted
	default:
		return StatusActive
	}
}

// ParseImportance maps a stored string onto an Importance, defaulting to normal.
func ParseImportance(s string) Importance {
	switch Importance(strings.ToLower(strings.TrimSpace(s))) {
	case ImportanceLow:
		return ImportanceLow
	case ImportanceHigh:
		return ImportanceHigh
	default:
		return ImportanceNormal
	}
}
