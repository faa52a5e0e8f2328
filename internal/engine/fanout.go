package engine

import (
	"context"
	"time"

	"github.com/salaamdev/task-sync/internal/state"
	"github.com/salaamdev/task-sync/internal/task"
)

// fanOut writes a mapping's canonical to every writable target provider:
// create when the mapping has no id there, recreate when the recorded id
// vanished (unless tombstoned, preserving delete-wins), update when any
// field differs, noop otherwise. Write failures are recorded and the next
// cycle retries, because the target still differs from canonical.
func (e *Engine) fanOut(ctx context.Context, st *state.SyncState, m *state.Mapping, snaps map[string]*snapshot, healthy []string, report *SyncReport) {
	if m.Canonical == nil {
		return
	}
	canonical := m.Canonical.Clone()
	if canonical.Title == "" {
		// Empty titles are never persisted outward.
		return
	}
	now := e.cfg.Now()

	for _, name := range e.targetProviders(healthy) {
		snap := snaps[name]
		id, hasID := m.ByProvider[name]
		_, present := snap.index[id]

		switch {
		case !hasID:
			e.write(ctx, st, m, name, canonical, "", ActionCreate, now, report)

		case !present:
			if st.IsTombstoned(name, id) {
				continue
			}
			e.write(ctx, st, m, name, canonical, "", ActionRecreate, now, report)

		default:
			cur := snap.index[id]
			if task.Equal(canonical, cur) {
				report.Counts.Noops++
				continue
			}
			e.write(ctx, st, m, name, canonical, id, ActionUpdate, now, report)
		}
	}
}

// write performs one provider upsert. An empty id means create; the
// server-assigned id is recorded on the mapping. Dry-run records the
// intended action without touching the provider.
func (e *Engine) write(ctx context.Context, st *state.SyncState, m *state.Mapping, name string, canonical task.Task, id string, kind ActionKind, now time.Time, report *SyncReport) {
	action := SyncAction{
		Kind:        kind,
		Provider:    name,
		CanonicalID: m.CanonicalID,
		ProviderID:  id,
		Title:       canonical.Title,
	}
	if e.cfg.DryRun {
		report.recordAction(action)
		return
	}

	upsert := canonical.Clone()
	upsert.ID = id
	out, err := e.byName[name].UpsertTask(ctx, upsert)
	if err != nil {
		report.recordError(name, "write", err)
		return
	}
	if out.ID != "" && out.ID != m.ByProvider[name] {
		st.UpsertProviderID(m.CanonicalID, name, out.ID, now)
	}
	action.ProviderID = out.ID
	report.recordAction(action)
}
