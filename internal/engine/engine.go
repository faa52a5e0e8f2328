// Package engine implements the reconciliation engine: per-cycle snapshot
// collection, cold-start matching, delete-wins tombstoning, per-field
// last-write-wins merging against a canonical baseline, and fan-out of the
// merged result to every writable provider. One cycle runs at a time per
// state directory, serialized by the pid lock.
package engine

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/salaamdev/task-sync/internal/conflictlog"
	"github.com/salaamdev/task-sync/internal/lock"
	"github.com/salaamdev/task-sync/internal/provider"
	"github.com/salaamdev/task-sync/internal/state"
)

// Engine reconciles a fixed, ordered set of providers into one logical
// task list. Provider order matters: it breaks conflict-timestamp ties
// and names the authoritative side in one-way modes.
type Engine struct {
	providers []provider.Provider
	byName    map[string]provider.Provider
	store     *state.Store
	cfg       Config
	log       *log.Entry
}

// New builds an engine over the given providers. At least two providers
// are required; there is nothing to reconcile below that.
func New(providers []provider.Provider, cfg Config) (*Engine, error) {
	if len(providers) < 2 {
		return nil, errors.New("sync needs at least two providers")
	}
	cfg.fill()
	if cfg.StateDir == "" {
		return nil, errors.New("state directory not configured")
	}

	byName := make(map[string]provider.Provider, len(providers))
	for _, p := range providers {
		if _, dup := byName[p.Name()]; dup {
			return nil, fmt.Errorf("duplicate provider %q", p.Name())
		}
		byName[p.Name()] = p
	}

	return &Engine{
		providers: providers,
		byName:    byName,
		store:     state.NewStore(cfg.StateDir),
		cfg:       cfg,
		log:       log.WithField("component", "engine"),
	}, nil
}

// Store exposes the engine's state store, mainly for status commands.
func (e *Engine) Store() *state.Store {
	return e.store
}

// RunCycle executes one full reconciliation cycle under the state-dir
// lock. A report is returned for every cycle that got past state load;
// recorded provider errors do not make the cycle itself fail. The
// watermark advances only when the new state was persisted.
func (e *Engine) RunCycle(ctx context.Context) (*SyncReport, error) {
	guard, err := lock.Acquire(e.cfg.StateDir)
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	st, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	now := e.cfg.Now()
	report := &SyncReport{
		Mode:         e.cfg.Mode,
		StartedAt:    now,
		DryRun:       e.cfg.DryRun,
		OldWatermark: st.LastSyncAt,
	}
	for _, p := range e.providers {
		report.Providers = append(report.Providers, p.Name())
	}

	if pruned := st.PruneExpiredTombstones(e.cfg.TombstoneTTLDays, now); pruned > 0 {
		e.log.WithField("pruned", pruned).Debug("expired tombstones pruned")
	}

	hadWatermark := st.LastSyncAt != nil
	snaps := e.collect(ctx, st.LastSyncAt, report)
	healthy := e.healthyProviders(snaps)
	if len(healthy) == 0 {
		// Nothing verifiable this cycle; leave all state untouched.
		report.Duration = e.cfg.Now().Sub(now)
		return report, nil
	}

	if !hadWatermark && len(st.Mappings) == 0 {
		report.ColdStart = true
		matched := e.coldStart(st, snaps, healthy)
		e.log.WithField("matched", matched).Info("cold start complete")
	}

	deleted := e.resolveDeletions(ctx, st, snaps, healthy, hadWatermark, report)
	e.reconcile(ctx, st, snaps, healthy, deleted, report)

	st.LastSyncAt = &now
	report.NewWatermark = &now

	if !e.cfg.DryRun {
		if err := e.appendConflicts(report); err != nil {
			e.log.WithError(err).Warn("conflict log append failed")
		}
		if err := e.store.Save(st); err != nil {
			// No state published; the watermark did not advance.
			report.NewWatermark = report.OldWatermark
			return report, fmt.Errorf("persisting sync state: %w", err)
		}
	}

	report.Duration = e.cfg.Now().Sub(now)
	e.log.WithFields(log.Fields{
		"mode":      report.Mode,
		"providers": healthy,
		"created":   report.Counts.Created,
		"updated":   report.Counts.Updated,
		"deleted":   report.Counts.Deleted,
		"recreated": report.Counts.Recreated,
		"noops":     report.Counts.Noops,
		"conflicts": len(report.Conflicts),
		"errors":    len(report.Errors),
	}).Info("cycle complete")
	return report, nil
}

// appendConflicts writes this cycle's conflicts to conflicts.log.
// Best-effort: a failure never aborts the cycle.
func (e *Engine) appendConflicts(report *SyncReport) error {
	if len(report.Conflicts) == 0 {
		return nil
	}
	records := make([]conflictlog.Record, 0, len(report.Conflicts))
	for _, c := range report.Conflicts {
		records = append(records, conflictlog.Record{
			At:          report.StartedAt,
			CanonicalID: c.CanonicalID,
			Field:       string(c.Field),
			Providers:   c.Providers,
			Winner:      c.Winner,
			Overwritten: c.Overwritten,
		})
	}
	return conflictlog.Append(e.cfg.StateDir, records)
}

// sourceSet returns the providers whose edits are sourced this cycle.
func (e *Engine) sourceSet(healthy []string) map[string]bool {
	set := map[string]bool{}
	switch e.cfg.Mode {
	case ModeAToBOnly, ModeMirror:
		primary := e.providers[0].Name()
		for _, name := range healthy {
			if name == primary {
				set[name] = true
			}
		}
	default:
		for _, name := range healthy {
			set[name] = true
		}
	}
	return set
}

// targetProviders returns the healthy providers the engine may write to,
// in configured order. One-way modes never write back to the primary.
func (e *Engine) targetProviders(healthy []string) []string {
	if e.cfg.Mode == ModeBidirectional {
		return healthy
	}
	primary := e.providers[0].Name()
	var targets []string
	for _, name := range healthy {
		if name != primary {
			targets = append(targets, name)
		}
	}
	return targets
}

// deleteWritable returns the providers delete propagation may touch,
// which matches the write targets for the mode.
func (e *Engine) deleteWritable(healthy []string) map[string]bool {
	set := map[string]bool{}
	for _, name := range e.targetProviders(healthy) {
		set[name] = true
	}
	return set
}
