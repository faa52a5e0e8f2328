// Package tasksync provides a minimal public API for embedding the sync
// engine in other Go programs.
//
// Most integrations only need the CLI; this package exports the types and
// constructors required to drive reconciliation cycles programmatically,
// for example from a scheduler or a custom provider harness.
package tasksync

import (
	"context"

	"github.com/salaamdev/task-sync/internal/engine"
	"github.com/salaamdev/task-sync/internal/provider"
	"github.com/salaamdev/task-sync/internal/state"
	"github.com/salaamdev/task-sync/internal/task"
)

// Provider is the port a task backend implements to participate in sync.
type Provider = provider.Provider

// Engine reconciles providers into one logical task list.
type Engine = engine.Engine

// Config configures an Engine.
type Config = engine.Config

// SyncReport summarizes one reconciliation cycle.
type SyncReport = engine.SyncReport

// Mode selects how edits flow between providers.
type Mode = engine.Mode

// Sync modes.
const (
	ModeBidirectional = engine.ModeBidirectional
	ModeAToBOnly      = engine.ModeAToBOnly
	ModeMirror        = engine.ModeMirror
)

// Core task model types.
type (
	Task       = task.Task
	Step       = task.Step
	Status     = task.Status
	Importance = task.Importance
)

// Task lifecycle states.
const (
	StatusActive    = task.StatusActive
	StatusCompleted = task.StatusCompleted
	StatusDeleted   = task.StatusDeleted
)

// SyncState is the persisted state file shape, exposed for inspection
// tooling.
type SyncState = state.SyncState

// New builds an engine over the given providers.
func New(providers []Provider, cfg Config) (*Engine, error) {
	return engine.New(providers, cfg)
}

// RunCycle executes one reconciliation cycle.
func RunCycle(ctx context.Context, e *Engine) (*SyncReport, error) {
	return e.RunCycle(ctx)
}
