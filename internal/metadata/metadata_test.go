package metadata

import (
	"strings"
	"testing"
	"time"

	"github.com/salaamdev/task-sync/internal/task"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	reminder := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := Block{
		DueTime:    "09:30",
		Reminder:   &reminder,
		Recurrence: "FREQ=WEEKLY;BYDAY=MO",
		Categories: []string{"home", "errands"},
		Importance: task.ImportanceHigh,
		Steps:      []task.Step{{Text: "step one", Checked: true}, {Text: "step two"}},
	}

	notes := "Remember the oat milk.\nSecond line."
	encoded := Encode(notes, b)

	plain, decoded := Decode(encoded)
	if plain != notes {
		t.Errorf("plain notes = %q, want %q", plain, notes)
	}
	if decoded.DueTime != "09:30" || decoded.Recurrence != b.Recurrence {
		t.Errorf("scalar fields lost: %+v", decoded)
	}
	if decoded.Reminder == nil || !decoded.Reminder.Equal(reminder) {
		t.Errorf("reminder lost: %v", decoded.Reminder)
	}
	if len(decoded.Categories) != 2 || len(decoded.Steps) != 2 {
		t.Errorf("slices lost: %+v", decoded)
	}
	if !decoded.Steps[0].Checked || decoded.Steps[1].Checked {
		t.Error("step checked flags lost")
	}
}

func TestEncodeEmptyBlockIsNoop(t *testing.T) {
	notes := "just notes"
	if got := Encode(notes, Block{}); got != notes {
		t.Errorf("Encode with empty block = %q", got)
	}
	// Normal importance counts as empty: it is the default.
	if got := Encode(notes, Block{Importance: task.ImportanceNormal}); got != notes {
		t.Errorf("Encode with default importance = %q", got)
	}
}

func TestDecodePlainNotes(t *testing.T) {
	plain, b := Decode("no block here")
	if plain != "no block here" || !b.Empty() {
		t.Errorf("plain decode mangled: %q %+v", plain, b)
	}
}

func TestDecodeDamagedBlock(t *testing.T) {
	damaged := "notes\n\n[task-sync::v1]%%%not-base64%%%[/task-sync]"
	plain, b := Decode(damaged)
	if plain != damaged || !b.Empty() {
		t.Error("damaged block should decode as plain notes")
	}
}

func TestEncodeStripsOnReencode(t *testing.T) {
	// Encoding, decoding, and encoding again must not stack blocks.
	once := Encode("notes", Block{DueTime: "08:00"})
	plain, b := Decode(once)
	twice := Encode(plain, b)
	if strings.Count(twice, "[task-sync::v1]") != 1 {
		t.Errorf("blocks stacked: %q", twice)
	}
}
