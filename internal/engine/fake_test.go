package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/salaamdev/task-sync/internal/task"
)

// fakeProvider is an in-memory provider for engine tests. Tests mutate its
// task map directly to simulate user edits between cycles; a task with
// status deleted models a provider that reports intentional deletions,
// while removing the map entry models silent disappearance.
type fakeProvider struct {
	name string

	mu     sync.Mutex
	tasks  map[string]task.Task
	nextID int

	failListAll     bool
	failListChanges bool
	failWrites      bool
}

func newFakeProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, tasks: map[string]task.Task{}}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ListTasks(_ context.Context, since *time.Time) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if since != nil && f.failListChanges {
		return nil, errors.New("simulated listChanges outage")
	}
	if since == nil && f.failListAll {
		return nil, errors.New("simulated listAll outage")
	}
	var out []task.Task
	for _, t := range f.tasks {
		if since != nil && t.UpdatedAt.Before(*since) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out, nil
}

func (f *fakeProvider) UpsertTask(_ context.Context, t task.Task) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return task.Task{}, errors.New("simulated write outage")
	}
	if t.ID == "" {
		f.nextID++
		t.ID = fmt.Sprintf("%s-%d", f.name, f.nextID)
	}
	f.tasks[t.ID] = t.Clone()
	return t.Clone(), nil
}

func (f *fakeProvider) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("simulated write outage")
	}
	delete(f.tasks, id)
	return nil
}

// seed installs a task under a fixed id without going through Upsert.
func (f *fakeProvider) seed(t task.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t.Clone()
}

// get returns the provider's copy of a task.
func (f *fakeProvider) get(id string) (task.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	return t.Clone(), ok
}

// snapshotIDs returns the ids the provider currently holds.
func (f *fakeProvider) snapshotIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.tasks {
		ids = append(ids, id)
	}
	return ids
}

// markDeleted flips a task to status deleted, the way Google Tasks reports
// intentional deletions in change sets.
func (f *fakeProvider) markDeleted(id string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tasks[id]
	t.Status = task.StatusDeleted
	t.UpdatedAt = at
	f.tasks[id] = t
}

// vanish removes a task without any deletion marker, the way Graph list
// calls simply stop returning a deleted task.
func (f *fakeProvider) vanish(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, id)
}
