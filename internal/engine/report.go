package engine

import (
	"time"

	"github.com/salaamdev/task-sync/internal/task"
)

// ActionKind classifies an executed provider write.
type ActionKind string

const (
	ActionCreate   ActionKind = "create"
	ActionUpdate   ActionKind = "update"
	ActionDelete   ActionKind = "delete"
	ActionRecreate ActionKind = "recreate"
)

// SyncAction is one executed (or, in dry-run, intended) provider write.
// Noops are counted but not listed, keeping reports small.
type SyncAction struct {
	Kind        ActionKind `json:"kind"`
	Provider    string     `json:"provider"`
	CanonicalID string     `json:"canonicalId"`
	ProviderID  string     `json:"providerId,omitempty"`
	Title       string     `json:"title,omitempty"`
}

// SyncError is one recorded per-provider failure. Stage is listChanges,
// listAll, or write.
type SyncError struct {
	Provider string `json:"provider"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
}

// SyncConflict records a same-field concurrent edit resolved by
// last-write-wins. Overwritten names the losing providers.
type SyncConflict struct {
	CanonicalID string     `json:"canonicalId"`
	Field       task.Field `json:"field"`
	Providers   []string   `json:"providers"`
	Winner      string     `json:"winner"`
	Overwritten []string   `json:"overwritten"`
}

// Counts tallies executed actions per kind.
type Counts struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Recreated int `json:"recreated"`
	Noops     int `json:"noops"`
}

// SyncReport is the structured result of one cycle. A cycle that recorded
// provider errors still yields a report; only lock and state I/O failures
// abort without one.
type SyncReport struct {
	Mode         Mode           `json:"mode"`
	Providers    []string       `json:"providers"`
	StartedAt    time.Time      `json:"startedAt"`
	Duration     time.Duration  `json:"duration"`
	OldWatermark *time.Time     `json:"oldWatermark,omitempty"`
	NewWatermark *time.Time     `json:"newWatermark,omitempty"`
	ColdStart    bool           `json:"coldStart,omitempty"`
	DryRun       bool           `json:"dryRun,omitempty"`
	Counts       Counts         `json:"counts"`
	Actions      []SyncAction   `json:"actions,omitempty"`
	Conflicts    []SyncConflict `json:"conflicts,omitempty"`
	Errors       []SyncError    `json:"errors,omitempty"`
}

func (r *SyncReport) recordAction(a SyncAction) {
	r.Actions = append(r.Actions, a)
	switch a.Kind {
	case ActionCreate:
		r.Counts.Created++
	case ActionUpdate:
		r.Counts.Updated++
	case ActionDelete:
		r.Counts.Deleted++
	case ActionRecreate:
		r.Counts.Recreated++
	}
}

func (r *SyncReport) recordError(provider, stage string, err error) {
	r.Errors = append(r.Errors, SyncError{Provider: provider, Stage: stage, Message: err.Error()})
}

// HasErrors reports whether any provider error was recorded this cycle.
func (r *SyncReport) HasErrors() bool {
	return len(r.Errors) > 0
}
