package task

import (
	"testing"
	"time"
)

func tm(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestFieldEqualSemantics(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		a, b  Task
		want  bool
	}{
		{"notes trimmed", FieldNotes, Task{Notes: "  hello \n"}, Task{Notes: "hello"}, true},
		{"notes differ", FieldNotes, Task{Notes: "a"}, Task{Notes: "b"}, false},
		{"dueAt prefix only", FieldDueAt, Task{DueAt: "2026-01-02T00:00:00Z"}, Task{DueAt: "2026-01-02"}, true},
		{"dueAt differ", FieldDueAt, Task{DueAt: "2026-01-02"}, Task{DueAt: "2026-01-03"}, false},
		{"status default collapses to active", FieldStatus, Task{}, Task{Status: StatusActive}, true},
		{"status completed vs active", FieldStatus, Task{Status: StatusCompleted}, Task{Status: StatusActive}, false},
		{"importance default collapses to normal", FieldImportance, Task{}, Task{Importance: ImportanceNormal}, true},
		{"categories are a set", FieldCategories, Task{Categories: []string{"b", "a"}}, Task{Categories: []string{"a", "b"}}, true},
		{"categories differ", FieldCategories, Task{Categories: []string{"a"}}, Task{Categories: []string{"a", "b"}}, false},
		{"steps are ordered", FieldSteps, Task{Steps: []Step{{Text: "x"}, {Text: "y"}}}, Task{Steps: []Step{{Text: "y"}, {Text: "x"}}}, false},
		{"steps equal", FieldSteps, Task{Steps: []Step{{Text: "x", Checked: true}}}, Task{Steps: []Step{{Text: "x", Checked: true}}}, true},
		{"reminder second precision", FieldReminder, Task{Reminder: tm("2026-03-01T09:00:00Z")}, Task{Reminder: tm("2026-03-01T09:00:00Z")}, true},
		{"reminder nil vs set", FieldReminder, Task{}, Task{Reminder: tm("2026-03-01T09:00:00Z")}, false},
		{"startAt date only", FieldStartAt, Task{StartAt: tm("2026-03-01T09:30:00Z")}, Task{StartAt: tm("2026-03-01T18:00:00Z")}, true},
		{"startAt different days", FieldStartAt, Task{StartAt: tm("2026-03-01T09:30:00Z")}, Task{StartAt: tm("2026-03-02T09:30:00Z")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FieldEqual(tt.field, tt.a, tt.b); got != tt.want {
				t.Errorf("FieldEqual(%s) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestCopyFieldDoesNotAlias(t *testing.T) {
	src := Task{Categories: []string{"a", "b"}, Steps: []Step{{Text: "s"}}, Reminder: tm("2026-03-01T09:00:00Z")}
	var dst Task
	CopyField(FieldCategories, &dst, src)
	CopyField(FieldSteps, &dst, src)
	CopyField(FieldReminder, &dst, src)

	dst.Categories[0] = "mutated"
	dst.Steps[0].Text = "mutated"
	*dst.Reminder = dst.Reminder.Add(time.Hour)

	if src.Categories[0] != "a" || src.Steps[0].Text != "s" {
		t.Error("CopyField aliased source slices")
	}
	if !src.Reminder.Equal(*tm("2026-03-01T09:00:00Z")) {
		t.Error("CopyField aliased source time pointer")
	}
}

func TestNormalize(t *testing.T) {
	task := Task{Title: "  Buy milk  ", DueAt: "2026-05-01T00:00:00Z"}
	task.Normalize()
	if task.Title != "Buy milk" {
		t.Errorf("title = %q", task.Title)
	}
	if task.DueAt != "2026-05-01" {
		t.Errorf("dueAt = %q", task.DueAt)
	}
	if task.Status != StatusActive || task.Importance != ImportanceNormal {
		t.Errorf("defaults not filled: %q %q", task.Status, task.Importance)
	}
}

func TestEqualCoversAllFields(t *testing.T) {
	a := Task{Title: "T", Notes: "n", DueAt: "2026-01-01", Status: StatusActive}
	b := a.Clone()
	if !Equal(a, b) {
		t.Fatal("clones should be equal")
	}
	b.DueTime = "09:00"
	if Equal(a, b) {
		t.Fatal("dueTime change not detected")
	}
}
