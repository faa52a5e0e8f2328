package engine

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/salaamdev/task-sync/internal/state"
)

// resolveDeletions applies delete-wins semantics before any field-level
// write happens. Two paths feed it: terminal-status changes reported by a
// provider, and disappearances inferred from the full snapshots. Both end
// in tombstones; propagation then deletes every tombstoned id that is
// still present on a healthy, delete-writable provider, which also
// retries deletes that failed in earlier cycles.
//
// The returned set holds the canonical ids resolved as deleted this
// cycle; the field-level pass skips them.
func (e *Engine) resolveDeletions(ctx context.Context, st *state.SyncState, snaps map[string]*snapshot, healthy []string, hadWatermark bool, report *SyncReport) map[string]bool {
	now := e.cfg.Now()
	sources := e.sourceSet(healthy)
	deleted := map[string]bool{}
	idToCanonical := map[string]string{}

	// Path (a): a provider reported status=deleted in its change set.
	for _, name := range healthy {
		for _, t := range snaps[name].changes {
			if !t.Deleted() || st.IsTombstoned(name, t.ID) {
				continue
			}
			m := st.FindMapping(name, t.ID)
			if m == nil {
				// Deleted before we ever mapped it; remember the id so it
				// is not picked up as a new task this cycle.
				st.AddTombstone(name, t.ID, now)
				continue
			}
			if !sources[name] {
				// Deletion on a write-only target is drift, not intent:
				// detach that side and let fan-out recreate from canonical.
				st.AddTombstone(name, t.ID, now)
				delete(m.ByProvider, name)
				m.UpdatedAt = now
				if len(m.ByProvider) == 0 {
					st.RemoveMapping(m.CanonicalID)
				}
				continue
			}
			e.tombstoneMapping(st, m, idToCanonical, now)
			deleted[m.CanonicalID] = true
			st.RemoveMapping(m.CanonicalID)
		}
	}

	// Path (b): external deletion inferred from absence. Only meaningful
	// once a baseline and a watermark exist; before that, absence just
	// means we have never synced.
	if hadWatermark {
		for _, m := range append([]*state.Mapping(nil), st.Mappings...) {
			if deleted[m.CanonicalID] || m.Canonical == nil {
				continue
			}
			var present, missing []string
			unknown := false
			for p, id := range m.ByProvider {
				if !lo.Contains(healthy, p) {
					unknown = true
					continue
				}
				if _, ok := snaps[p].index[id]; ok {
					present = append(present, p)
				} else {
					missing = append(missing, p)
				}
			}
			if len(missing) == 0 {
				continue
			}

			if len(present) == 0 {
				if unknown {
					continue // some sides unverifiable; leave the mapping alone
				}
				// Pure orphan: every side is gone. Tombstone and drop.
				e.tombstoneMapping(st, m, idToCanonical, now)
				deleted[m.CanonicalID] = true
				st.RemoveMapping(m.CanonicalID)
				continue
			}

			sourceMissing := lo.SomeBy(missing, func(p string) bool { return sources[p] })
			if e.cfg.Mode != ModeBidirectional && !sourceMissing {
				// Drift on a write-only target: detach the missing sides
				// only; fan-out recreates them from canonical.
				for _, p := range missing {
					st.AddTombstone(p, m.ByProvider[p], now)
					delete(m.ByProvider, p)
				}
				m.UpdatedAt = now
				continue
			}

			// External delete: one side vanished while another still holds
			// the task. Delete wins everywhere.
			e.tombstoneMapping(st, m, idToCanonical, now)
			deleted[m.CanonicalID] = true
			st.RemoveMapping(m.CanonicalID)
		}
	}

	e.propagateDeletes(ctx, st, snaps, healthy, idToCanonical, report)
	return deleted
}

// tombstoneMapping tombstones every side of a mapping and records which
// canonical id each provider id belonged to for action attribution.
func (e *Engine) tombstoneMapping(st *state.SyncState, m *state.Mapping, idToCanonical map[string]string, now time.Time) {
	for p, id := range m.ByProvider {
		st.AddTombstone(p, id, now)
		idToCanonical[p+"\x00"+id] = m.CanonicalID
	}
}

// propagateDeletes issues DeleteTask for every tombstoned id still present
// on a healthy, delete-writable provider. Driving propagation off the
// tombstone set rather than this cycle's queue makes failed deletes from
// earlier cycles retry for free, and re-buries tasks resurrected behind
// the engine's back.
func (e *Engine) propagateDeletes(ctx context.Context, st *state.SyncState, snaps map[string]*snapshot, healthy []string, idToCanonical map[string]string, report *SyncReport) {
	writable := e.deleteWritable(healthy)
	for _, name := range healthy {
		if !writable[name] {
			continue
		}
		snap := snaps[name]
		for _, t := range snap.all {
			if t.Deleted() || !st.IsTombstoned(name, t.ID) {
				continue
			}
			action := SyncAction{
				Kind:        ActionDelete,
				Provider:    name,
				CanonicalID: idToCanonical[name+"\x00"+t.ID],
				ProviderID:  t.ID,
				Title:       t.Title,
			}
			if e.cfg.DryRun {
				report.recordAction(action)
				continue
			}
			if err := e.byName[name].DeleteTask(ctx, t.ID); err != nil {
				report.recordError(name, "write", err)
				continue
			}
			report.recordAction(action)
		}
	}
}
