// Package metadata embeds the rich task fields into a notes string for
// providers that lack native support for them. The block is a fenced
// base64 JSON payload appended after the user's notes; Decode strips it
// back out so the engine never sees it as note content.
package metadata

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/salaamdev/task-sync/internal/task"
)

const (
	blockOpen  = "[task-sync::v1]"
	blockClose = "[/task-sync]"
)

// Block carries the fields a lean provider cannot store natively. Unknown
// keys in a decoded payload are ignored, so newer writers stay readable.
type Block struct {
	DueTime    string          `json:"dueTime,omitempty"`
	Reminder   *time.Time      `json:"reminder,omitempty"`
	Recurrence string          `json:"recurrence,omitempty"`
	Categories []string        `json:"categories,omitempty"`
	Importance task.Importance `json:"importance,omitempty"`
	Steps      []task.Step     `json:"steps,omitempty"`
	StartAt    *time.Time      `json:"startAt,omitempty"`
}

// Empty reports whether the block carries nothing worth encoding.
func (b Block) Empty() bool {
	return b.DueTime == "" && b.Reminder == nil && b.Recurrence == "" &&
		len(b.Categories) == 0 && (b.Importance == "" || b.Importance == task.ImportanceNormal) &&
		len(b.Steps) == 0 && b.StartAt == nil
}

// FromTask extracts the lean-provider fields of t into a Block.
func FromTask(t task.Task) Block {
	return Block{
		DueTime:    t.DueTime,
		Reminder:   t.Reminder,
		Recurrence: t.Recurrence,
		Categories: t.Categories,
		Importance: t.Importance,
		Steps:      t.Steps,
		StartAt:    t.StartAt,
	}
}

// Apply copies the block's fields onto t.
func (b Block) Apply(t *task.Task) {
	t.DueTime = b.DueTime
	t.Reminder = b.Reminder
	t.Recurrence = b.Recurrence
	t.Categories = b.Categories
	if b.Importance != "" {
		t.Importance = b.Importance
	}
	t.Steps = b.Steps
	t.StartAt = b.StartAt
}

// Encode appends the block to notes. An empty block returns notes
// unchanged so round-tripping a plain task adds no noise.
func Encode(notes string, b Block) string {
	if b.Empty() {
		return notes
	}
	payload, err := json.Marshal(b)
	if err != nil {
		return notes
	}
	encoded := blockOpen + base64.StdEncoding.EncodeToString(payload) + blockClose
	notes = strings.TrimRight(notes, "\n")
	if notes == "" {
		return encoded
	}
	return notes + "\n\n" + encoded
}

// Decode splits notes into the user-visible text and the embedded block.
// Notes without a block (or with a damaged one) come back verbatim with a
// zero Block.
func Decode(notes string) (string, Block) {
	start := strings.LastIndex(notes, blockOpen)
	if start < 0 {
		return notes, Block{}
	}
	rest := notes[start+len(blockOpen):]
	end := strings.Index(rest, blockClose)
	if end < 0 {
		return notes, Block{}
	}

	payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest[:end]))
	if err != nil {
		return notes, Block{}
	}
	var b Block
	if err := json.Unmarshal(payload, &b); err != nil {
		return notes, Block{}
	}

	plain := notes[:start] + rest[end+len(blockClose):]
	return strings.TrimRight(plain, "\n "), b
}
