package gtasks

import (
	"strings"
	"testing"
	"time"

	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/salaamdev/task-sync/internal/task"
)

func TestFromGoogleStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		in   tasksapi.Task
		want task.Status
	}{
		{"needs action", tasksapi.Task{Status: "needsAction"}, task.StatusActive},
		{"completed", tasksapi.Task{Status: "completed"}, task.StatusCompleted},
		{"deleted flag wins", tasksapi.Task{Status: "completed", Deleted: true}, task.StatusDeleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fromGoogle(&tc.in)
			if got.Status != tc.want {
				t.Errorf("status = %q, want %q", got.Status, tc.want)
			}
		})
	}
}

func TestFromGoogleDueDateOnly(t *testing.T) {
	got := fromGoogle(&tasksapi.Task{Due: "2026-03-14T00:00:00.000Z"})
	if got.DueAt != "2026-03-14" {
		t.Errorf("dueAt = %q, want date prefix only", got.DueAt)
	}
}

func TestConversionRoundTripsRichFields(t *testing.T) {
	reminder := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	in := task.Task{
		Title:      "Pay rent",
		Notes:      "transfer before noon",
		DueAt:      "2026-03-14",
		DueTime:    "09:30",
		Reminder:   &reminder,
		Recurrence: "FREQ=MONTHLY;BYMONTHDAY=14",
		Categories: []string{"finance"},
		Importance: task.ImportanceHigh,
		Steps:      []task.Step{{Text: "check balance"}, {Text: "send", Checked: true}},
		Status:     task.StatusActive,
	}

	gt := toGoogle(in)
	if gt.Due != "2026-03-14T00:00:00.000Z" {
		t.Errorf("wire due = %q", gt.Due)
	}
	if !strings.Contains(gt.Notes, "transfer before noon") {
		t.Errorf("user notes lost: %q", gt.Notes)
	}

	gt.Updated = "2026-03-01T12:00:00.000Z"
	out := fromGoogle(gt)
	if out.Notes != in.Notes {
		t.Errorf("notes = %q, want %q", out.Notes, in.Notes)
	}
	if out.DueTime != "09:30" || out.Recurrence != in.Recurrence || out.Importance != task.ImportanceHigh {
		t.Errorf("rich fields lost: %+v", out)
	}
	if out.Reminder == nil || !out.Reminder.Equal(reminder) {
		t.Errorf("reminder = %v", out.Reminder)
	}
	if len(out.Steps) != 2 || out.Steps[1].Text != "send" || !out.Steps[1].Checked {
		t.Errorf("steps = %+v", out.Steps)
	}
	if out.UpdatedAt.IsZero() {
		t.Error("updatedAt not parsed")
	}
}

func TestToGoogleClearsDueWhenUnset(t *testing.T) {
	gt := toGoogle(task.Task{Title: "No due date"})
	found := false
	for _, f := range gt.NullFields {
		if f == "Due" {
			found = true
		}
	}
	if !found {
		t.Error("unset due date should be nulled on the wire")
	}
	if gt.Status != "needsAction" {
		t.Errorf("status = %q", gt.Status)
	}
}
