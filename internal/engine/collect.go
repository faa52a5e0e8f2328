package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salaamdev/task-sync/internal/task"
)

// snapshot is one provider's per-cycle view: the incremental change set,
// the full task list, and an index of the full list by provider-local id.
type snapshot struct {
	name    string
	changes []task.Task
	all     []task.Task
	index   map[string]task.Task
	healthy bool
}

// collect fetches (changes-since-watermark, full-list) from every provider
// in parallel. Per-call failures are recorded on the report; a provider
// whose full list failed is marked unhealthy and sits out the cycle, its
// mappings untouched.
func (e *Engine) collect(ctx context.Context, since *time.Time, report *SyncReport) map[string]*snapshot {
	snaps := make(map[string]*snapshot, len(e.providers))
	for _, p := range e.providers {
		snaps[p.Name()] = &snapshot{name: p.Name(), index: map[string]task.Task{}}
	}

	var mu sync.Mutex
	var g errgroup.Group
	for _, p := range e.providers {
		snap := snaps[p.Name()]

		g.Go(func() error {
			tasks, err := p.ListTasks(ctx, since)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.recordError(p.Name(), "listChanges", err)
				return nil
			}
			snap.changes = normalizeAll(tasks)
			return nil
		})

		g.Go(func() error {
			tasks, err := p.ListTasks(ctx, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.recordError(p.Name(), "listAll", err)
				return nil
			}
			snap.all = normalizeAll(tasks)
			snap.healthy = true
			for _, t := range snap.all {
				// A deleted task is absent for presence purposes.
				if !t.Deleted() {
					snap.index[t.ID] = t
				}
			}
			return nil
		})
	}
	_ = g.Wait() // workers record errors instead of returning them

	for name, snap := range snaps {
		if !snap.healthy {
			e.log.WithField("provider", name).Warn("full snapshot failed; provider sits out this cycle")
		}
	}
	return snaps
}

// healthyProviders returns the healthy provider names in configured order.
func (e *Engine) healthyProviders(snaps map[string]*snapshot) []string {
	var names []string
	for _, p := range e.providers {
		if snaps[p.Name()].healthy {
			names = append(names, p.Name())
		}
	}
	return names
}

func normalizeAll(tasks []task.Task) []task.Task {
	for i := range tasks {
		tasks[i].Normalize()
	}
	return tasks
}
