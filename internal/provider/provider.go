// Package provider defines the port every remote task provider implements.
// All network code lives behind this boundary; the engine only ever sees
// canonical tasks keyed by opaque provider-local ids.
package provider

import (
	"context"
	"time"

	"github.com/salaamdev/task-sync/internal/task"
)

// Provider is the three-operation capability set of a remote task store.
// The engine treats every returned error as transient for the stage that
// produced it and degrades instead of aborting the cycle.
type Provider interface {
	// Name returns the stable provider tag used in mappings, tombstones,
	// and reports (e.g. "google", "microsoft").
	Name() string

	// ListTasks returns the provider's tasks as canonical tasks carrying
	// the provider-local id. A nil since yields the full snapshot;
	// otherwise only tasks modified at or after since are returned.
	ListTasks(ctx context.Context, since *time.Time) ([]task.Task, error)

	// UpsertTask creates the task when its ID is empty and patches it
	// otherwise. The returned record is the provider's authoritative
	// stored view, including a server-assigned id on create.
	UpsertTask(ctx context.Context, t task.Task) (task.Task, error)

	// DeleteTask removes the task with the given provider-local id.
	// Idempotent from the engine's point of view.
	DeleteTask(ctx context.Context, id string) error
}
