package engine

import (
	"context"
	"sort"
	"time"

	"github.com/salaamdev/task-sync/internal/state"
	"github.com/salaamdev/task-sync/internal/task"
)

// reconcile is the field-level pass: it maps every newly observed task,
// then per mapping diffs each source provider's current view against the
// canonical baseline, resolves per-field contention by last-write-wins,
// installs the new canonical as the baseline, and fans it out.
func (e *Engine) reconcile(ctx context.Context, st *state.SyncState, snaps map[string]*snapshot, healthy []string, deleted map[string]bool, report *SyncReport) {
	now := e.cfg.Now()
	sources := e.sourceSet(healthy)

	// Every observed task on a source provider gets a mapping before the
	// field pass, so brand-new tasks merge like any other. Tombstoned ids
	// stay unmapped: delete-wins outranks update.
	for _, name := range healthy {
		if !sources[name] {
			continue
		}
		for _, t := range snaps[name].all {
			if t.Deleted() || st.IsTombstoned(name, t.ID) {
				continue
			}
			st.EnsureMapping(name, t.ID, now)
		}
	}

	for _, m := range append([]*state.Mapping(nil), st.Mappings...) {
		if deleted[m.CanonicalID] {
			continue
		}
		if e.anySideTombstoned(st, m) {
			continue
		}
		e.mergeMapping(st, m, snaps, healthy, sources, now, report)
		e.fanOut(ctx, st, m, snaps, healthy, report)
	}
}

func (e *Engine) anySideTombstoned(st *state.SyncState, m *state.Mapping) bool {
	for p, id := range m.ByProvider {
		if st.IsTombstoned(p, id) {
			return true
		}
	}
	return false
}

// mergeMapping computes the mapping's new canonical. For each field, the
// contenders are the source providers whose current value differs
// semantically from the baseline; zero contenders keep the baseline, one
// is adopted outright, several resolve by updatedAt descending with
// configured provider order breaking ties. The new canonical becomes the
// baseline in memory before fan-out reads it.
func (e *Engine) mergeMapping(st *state.SyncState, m *state.Mapping, snaps map[string]*snapshot, healthy []string, sources map[string]bool, now time.Time, report *SyncReport) {
	byProvTask := map[string]task.Task{}
	var observed []string
	for _, name := range healthy {
		id, ok := m.ByProvider[name]
		if !ok {
			continue
		}
		if t, ok := snaps[name].index[id]; ok {
			byProvTask[name] = t
			observed = append(observed, name)
		}
	}
	if len(observed) == 0 && m.Canonical == nil {
		return // nothing known about this task yet
	}

	// Baseline for diffing: the stored canonical, else the first observed
	// snapshot in configured provider order.
	var baseline task.Task
	if m.Canonical != nil {
		baseline = m.Canonical.Clone()
	} else {
		baseline = byProvTask[observed[0]].Clone()
		baseline.ID = ""
	}

	canonical := baseline.Clone()
	var latestAdopted time.Time

	for _, f := range task.Fields {
		var contenders []string
		for _, name := range observed {
			if !sources[name] {
				continue
			}
			cur := byProvTask[name]
			if !task.FieldEqual(f, cur, baseline) {
				contenders = append(contenders, name)
			}
		}

		switch len(contenders) {
		case 0:
			// keep baseline
		case 1:
			winner := byProvTask[contenders[0]]
			task.CopyField(f, &canonical, winner)
			if winner.UpdatedAt.After(latestAdopted) {
				latestAdopted = winner.UpdatedAt
			}
		default:
			ordered := append([]string(nil), contenders...)
			sort.SliceStable(ordered, func(i, j int) bool {
				ti := byProvTask[ordered[i]].UpdatedAt
				tj := byProvTask[ordered[j]].UpdatedAt
				if !ti.Equal(tj) {
					return ti.After(tj)
				}
				return e.providerIndex(ordered[i]) < e.providerIndex(ordered[j])
			})
			winner := byProvTask[ordered[0]]
			task.CopyField(f, &canonical, winner)
			if winner.UpdatedAt.After(latestAdopted) {
				latestAdopted = winner.UpdatedAt
			}

			conflict := SyncConflict{
				CanonicalID: m.CanonicalID,
				Field:       f,
				Providers:   ordered,
				Winner:      ordered[0],
				Overwritten: ordered[1:],
			}
			report.Conflicts = append(report.Conflicts, conflict)
			e.log.WithFields(map[string]interface{}{
				"canonicalId": m.CanonicalID,
				"field":       f,
				"winner":      conflict.Winner,
				"overwritten": conflict.Overwritten,
			}).Warn("conflicting edits; last write wins")
		}
	}

	if !latestAdopted.IsZero() {
		canonical.UpdatedAt = latestAdopted
	}

	st.UpsertCanonical(m.CanonicalID, canonical, now)
}

func (e *Engine) providerIndex(name string) int {
	for i, p := range e.providers {
		if p.Name() == name {
			return i
		}
	}
	return len(e.providers)
}
