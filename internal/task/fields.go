package task

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Field names one mergeable attribute of a Task. The merge engine iterates
// Fields instead of reflecting over the struct, so a typo is a compile
// error rather than a silently skipped field.
type Field string

const (
	FieldTitle      Field = "title"
	FieldNotes      Field = "notes"
	FieldDueAt      Field = "dueAt"
	FieldDueTime    Field = "dueTime"
	FieldStatus     Field = "status"
	FieldReminder   Field = "reminder"
	FieldRecurrence Field = "recurrence"
	FieldCategories Field = "categories"
	FieldImportance Field = "importance"
	FieldSteps      Field = "steps"
	FieldStartAt    Field = "startAt"
)

// Fields lists every mergeable field in a fixed order.
var Fields = []Field{
	FieldTitle,
	FieldNotes,
	FieldDueAt,
	FieldDueTime,
	FieldStatus,
	FieldReminder,
	FieldRecurrence,
	FieldCategories,
	FieldImportance,
	FieldSteps,
	FieldStartAt,
}

// FieldEqual reports whether a and b agree on field f under semantic
// equality: notes compare trimmed, date fields compare by date prefix only,
// categories compare as an unordered set, steps compare as an ordered
// structure, and empty/default values collapse to one equivalence class
// for the optional fields.
func FieldEqual(f Field, a, b Task) bool {
	switch f {
	case FieldTitle:
		return strings.TrimSpace(a.Title) == strings.TrimSpace(b.Title)
	case FieldNotes:
		return strings.TrimSpace(a.Notes) == strings.TrimSpace(b.Notes)
	case FieldDueAt:
		return DatePrefix(a.DueAt) == DatePrefix(b.DueAt)
	case FieldDueTime:
		return a.DueTime == b.DueTime
	case FieldStatus:
		return ParseStatus(string(a.Status)) == ParseStatus(string(b.Status))
	case FieldReminder:
		return instantEqual(a.Reminder, b.Reminder)
	case FieldRecurrence:
		return a.Recurrence == b.Recurrence
	case FieldCategories:
		return categorySetEqual(a.Categories, b.Categories)
	case FieldImportance:
		return ParseImportance(string(a.Importance)) == ParseImportance(string(b.Importance))
	case FieldSteps:
		return stepsEqual(a.Steps, b.Steps)
	case FieldStartAt:
		return dateOnlyEqual(a.StartAt, b.StartAt)
	}
	return true
}

// Equal reports whether a and b agree on every mergeable field.
func Equal(a, b Task) bool {
	for _, f := range Fields {
		if !FieldEqual(f, a, b) {
			return false
		}
	}
	return true
}

// CopyField copies field f from src into dst, duplicating slices and time
// pointers so dst never aliases src.
func CopyField(f Field, dst *Task, src Task) {
	switch f {
	case FieldTitle:
		dst.Title = src.Title
	case FieldNotes:
		dst.Notes = src.Notes
	case FieldDueAt:
		dst.DueAt = DatePrefix(src.DueAt)
	case FieldDueTime:
		dst.DueTime = src.DueTime
	case FieldStatus:
		dst.Status = src.Status
	case FieldReminder:
		dst.Reminder = cloneTime(src.Reminder)
	case FieldRecurrence:
		dst.Recurrence = src.Recurrence
	case FieldCategories:
		dst.Categories = append([]string(nil), src.Categories...)
	case FieldImportance:
		dst.Importance = src.Importance
	case FieldSteps:
		dst.Steps = append([]Step(nil), src.Steps...)
	case FieldStartAt:
		dst.StartAt = cloneTime(src.StartAt)
	}
}

// FieldString renders field f of t for conflict records and logs.
func FieldString(f Field, t Task) string {
	switch f {
	case FieldTitle:
		return t.Title
	case FieldNotes:
		return t.Notes
	case FieldDueAt:
		return DatePrefix(t.DueAt)
	case FieldDueTime:
		return t.DueTime
	case FieldStatus:
		return string(ParseStatus(string(t.Status)))
	case FieldReminder:
		if t.Reminder == nil {
			return ""
		}
		return t.Reminder.UTC().Format(time.RFC3339)
	case FieldRecurrence:
		return t.Recurrence
	case FieldCategories:
		sorted := append([]string(nil), t.Categories...)
		sort.Strings(sorted)
		return strings.Join(sorted, ",")
	case FieldImportance:
		return string(ParseImportance(string(t.Importance)))
	case FieldSteps:
		b, _ := json.Marshal(t.Steps)
		return string(b)
	case FieldStartAt:
		if t.StartAt == nil {
			return ""
		}
		return t.StartAt.UTC().Format("2006-01-02")
	}
	return ""
}

// instantEqual compares two reminder instants at second precision; neither
// provider stores fractional seconds.
func instantEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}

// dateOnlyEqual compares two instants by calendar date, matching the
// date-prefix semantics used for due dates.
func dateOnlyEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UTC().Format("2006-01-02") == b.UTC().Format("2006-01-02")
}

// categorySetEqual treats categories as an unordered set so a provider
// reordering the list does not register as an edit.
func categorySetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func stepsEqual(a, b []Step) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
