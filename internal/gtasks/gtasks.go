// Package gtasks adapts Google Tasks to the provider port. Google's task
// records carry only title, notes, due date, status and a deleted flag;
// the remaining canonical fields travel in the metadata block embedded in
// the notes.
package gtasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/salaamdev/task-sync/internal/metadata"
	"github.com/salaamdev/task-sync/internal/ratelimit"
	"github.com/salaamdev/task-sync/internal/task"
)

// ProviderName is the name the engine and state file use for this provider.
const ProviderName = "google"

// DefaultTaskList is Google's alias for the account's primary task list.
const DefaultTaskList = "@default"

const maxPageSize = 100

// Provider is a Google Tasks client scoped to one task list.
type Provider struct {
	svc     *tasksapi.Service
	listID  string
	limiter *ratelimit.Registry
	log     *log.Entry
}

// New builds a provider over the given token source, talking to the
// account's default task list.
func New(ctx context.Context, ts oauth2.TokenSource, limiter *ratelimit.Registry) (*Provider, error) {
	svc, err := tasksapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("building tasks service: %w", err)
	}
	return &Provider{
		svc:     svc,
		listID:  DefaultTaskList,
		limiter: limiter,
		log:     log.WithField("provider", ProviderName),
	}, nil
}

// WithTaskList returns a provider scoped to a specific task list id.
func (p *Provider) WithTaskList(listID string) *Provider {
	out := *p
	out.listID = listID
	return &out
}

// Name implements the provider port.
func (p *Provider) Name() string { return ProviderName }

// ListTasks returns every task in the list, including hidden (completed)
// and deleted ones. A non-nil since narrows it to tasks updated at or
// after that instant.
func (p *Provider) ListTasks(ctx context.Context, since *time.Time) ([]task.Task, error) {
	var out []task.Task
	pageToken := ""
	for {
		call := p.svc.Tasks.List(p.listID).
			ShowCompleted(true).
			ShowHidden(true).
			ShowDeleted(true).
			MaxResults(maxPageSize).
			Context(ctx)
		if since != nil {
			call = call.UpdatedMin(since.UTC().Format(time.RFC3339))
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var page *tasksapi.Tasks
		err := p.do(ctx, func() error {
			var err error
			page, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("listing google tasks: %w", err)
		}

		for _, gt := range page.Items {
			out = append(out, fromGoogle(gt))
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

// UpsertTask inserts when t has no id, patches otherwise. The returned
// task carries the server-assigned id and updated timestamp.
func (p *Provider) UpsertTask(ctx context.Context, t task.Task) (task.Task, error) {
	gt := toGoogle(t)
	var saved *tasksapi.Task
	var err error
	if t.ID == "" {
		err = p.do(ctx, func() error {
			var err2 error
			saved, err2 = p.svc.Tasks.Insert(p.listID, gt).Context(ctx).Do()
			return err2
		})
		if err != nil {
			return task.Task{}, fmt.Errorf("inserting google task: %w", err)
		}
	} else {
		err = p.do(ctx, func() error {
			var err2 error
			saved, err2 = p.svc.Tasks.Patch(p.listID, t.ID, gt).Context(ctx).Do()
			return err2
		})
		if err != nil {
			return task.Task{}, fmt.Errorf("patching google task %s: %w", t.ID, err)
		}
	}
	return fromGoogle(saved), nil
}

// DeleteTask removes a task. A 404 means someone beat us to it, which is
// success for delete propagation.
func (p *Provider) DeleteTask(ctx context.Context, id string) error {
	err := p.do(ctx, func() error {
		return p.svc.Tasks.Delete(p.listID, id).Context(ctx).Do()
	})
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting google task %s: %w", id, err)
	}
	return nil
}

// do runs one API call behind the rate limiter with retries on throttling
// and server errors.
func (p *Provider) do(ctx context.Context, fn func() error) error {
	if err := p.limiter.Wait(ctx, ProviderName); err != nil {
		return err
	}
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(1*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			p.log.WithError(err).WithField("attempt", n+1).Debug("retrying google tasks call")
		}),
	)
}

func retryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return false
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// fromGoogle converts a Google task to the canonical shape. The metadata
// block, if present, restores the fields Google cannot store.
func fromGoogle(gt *tasksapi.Task) task.Task {
	t := task.Task{
		ID:    gt.Id,
		Title: gt.Title,
	}

	notes, block := metadata.Decode(gt.Notes)
	t.Notes = notes
	block.Apply(&t)

	if gt.Due != "" {
		t.DueAt = task.DatePrefix(gt.Due)
	}
	switch {
	case gt.Deleted:
		t.Status = task.StatusDeleted
	case gt.Status == "completed":
		t.Status = task.StatusCompleted
	default:
		t.Status = task.StatusActive
	}
	if gt.Updated != "" {
		if ts, err := time.Parse(time.RFC3339, gt.Updated); err == nil {
			t.UpdatedAt = ts.UTC()
		}
	}

	t.Normalize()
	return t
}

// toGoogle converts a canonical task to the wire shape. Fields Google has
// no column for ride along in the metadata block.
func toGoogle(t task.Task) *tasksapi.Task {
	gt := &tasksapi.Task{
		Id:    t.ID,
		Title: t.Title,
		Notes: metadata.Encode(t.Notes, metadata.FromTask(t)),
	}
	if t.DueAt != "" {
		// Google stores due dates as midnight-UTC timestamps.
		gt.Due = t.DueAt + "T00:00:00.000Z"
	}
	switch t.Status {
	case task.StatusCompleted:
		gt.Status = "completed"
	default:
		gt.Status = "needsAction"
		// Clearing completion requires nulling the completed timestamp.
		gt.NullFields = append(gt.NullFields, "Completed")
	}
	if t.DueAt == "" {
		gt.NullFields = append(gt.NullFields, "Due")
	}
	return gt
}
