// Package mstodo adapts Microsoft To Do (via the Graph REST API) to the
// provider port. Graph stores nearly every canonical field natively:
// checklist items map to steps, categories and importance carry over
// directly, and recurrence converts to and from an RRULE subset. Graph
// never reports deletions; deleted tasks simply stop appearing, which the
// engine detects by absence.
package mstodo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/salaamdev/task-sync/internal/ratelimit"
	"github.com/salaamdev/task-sync/internal/task"
)

// ProviderName is the name the engine and state file use for this provider.
const ProviderName = "microsoft"

var errNotFound = errors.New("graph: not found")

// Provider is a Microsoft To Do client scoped to one task list.
type Provider struct {
	c      *client
	listID string
	log    *log.Entry
}

// New builds a provider over the given token source. The task list is
// resolved lazily on first use; the account's default list is chosen.
func New(tokens oauth2.TokenSource, limiter *ratelimit.Registry) *Provider {
	return &Provider{
		c:   newClient(tokens, limiter),
		log: log.WithField("provider", ProviderName),
	}
}

// WithTaskList returns a provider pinned to a specific task list id,
// skipping default-list discovery.
func (p *Provider) WithTaskList(listID string) *Provider {
	out := *p
	out.listID = listID
	return &out
}

// WithBaseURL returns a provider talking to the given endpoint. Used by
// tests to point at a mock server.
func (p *Provider) WithBaseURL(base string) *Provider {
	out := *p
	c := *p.c
	c.BaseURL = strings.TrimRight(base, "/")
	out.c = &c
	return &out
}

// Name implements the provider port.
func (p *Provider) Name() string { return ProviderName }

type todoList struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	WellknownListName string `json:"wellknownListName"`
}

type listsPage struct {
	Value    []todoList `json:"value"`
	NextLink string     `json:"@odata.nextLink"`
}

// resolveList finds the account's default task list.
func (p *Provider) resolveList(ctx context.Context) (string, error) {
	if p.listID != "" {
		return p.listID, nil
	}
	next := "/me/todo/lists"
	for next != "" {
		var page listsPage
		if err := p.c.request(ctx, "GET", next, nil, &page); err != nil {
			return "", fmt.Errorf("listing task lists: %w", err)
		}
		for _, l := range page.Value {
			if l.WellknownListName == "defaultList" {
				p.listID = l.ID
				return p.listID, nil
			}
		}
		next = page.NextLink
	}
	return "", errors.New("no default task list found")
}

type tasksPage struct {
	Value    []todoTask `json:"value"`
	NextLink string     `json:"@odata.nextLink"`
}

// ListTasks returns the list's tasks. A non-nil since narrows the query
// with a lastModifiedDateTime filter; pagination follows @odata.nextLink.
func (p *Provider) ListTasks(ctx context.Context, since *time.Time) ([]task.Task, error) {
	listID, err := p.resolveList(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("$top", fmt.Sprint(MaxPageSize))
	q.Set("$expand", "checklistItems")
	if since != nil {
		q.Set("$filter", fmt.Sprintf("lastModifiedDateTime ge %s", since.UTC().Format(time.RFC3339)))
	}
	next := fmt.Sprintf("/me/todo/lists/%s/tasks?%s", url.PathEscape(listID), q.Encode())

	var out []task.Task
	for next != "" {
		var page tasksPage
		if err := p.c.request(ctx, "GET", next, nil, &page); err != nil {
			return nil, fmt.Errorf("listing microsoft tasks: %w", err)
		}
		for i := range page.Value {
			out = append(out, fromGraph(&page.Value[i]))
		}
		next = page.NextLink
	}
	return out, nil
}

// UpsertTask creates when t has no id, patches otherwise. The returned
// task carries the server-assigned id and modification timestamp.
func (p *Provider) UpsertTask(ctx context.Context, t task.Task) (task.Task, error) {
	listID, err := p.resolveList(ctx)
	if err != nil {
		return task.Task{}, err
	}

	payload := toGraph(t)
	var saved todoTask
	if t.ID == "" {
		path := fmt.Sprintf("/me/todo/lists/%s/tasks", url.PathEscape(listID))
		if err := p.c.request(ctx, "POST", path, payload, &saved); err != nil {
			return task.Task{}, fmt.Errorf("creating microsoft task: %w", err)
		}
	} else {
		path := fmt.Sprintf("/me/todo/lists/%s/tasks/%s", url.PathEscape(listID), url.PathEscape(t.ID))
		if err := p.c.request(ctx, "PATCH", path, payload, &saved); err != nil {
			return task.Task{}, fmt.Errorf("updating microsoft task %s: %w", t.ID, err)
		}
	}
	out := fromGraph(&saved)
	if len(saved.ChecklistItems) == 0 && len(t.Steps) > 0 {
		// PATCH responses omit unexpanded checklist items; keep ours.
		out.Steps = append([]task.Step(nil), t.Steps...)
	}
	return out, nil
}

// DeleteTask removes a task. Graph's 404 means it is already gone, which
// counts as success for delete propagation.
func (p *Provider) DeleteTask(ctx context.Context, id string) error {
	listID, err := p.resolveList(ctx)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/me/todo/lists/%s/tasks/%s", url.PathEscape(listID), url.PathEscape(id))
	err = p.c.request(ctx, "DELETE", path, nil, nil)
	if errors.Is(err, errNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting microsoft task %s: %w", id, err)
	}
	return nil
}
