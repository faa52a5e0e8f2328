package mstodo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/salaamdev/task-sync/internal/task"
)

func testProvider(t *testing.T, handler http.Handler) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	return New(tokens, nil).WithBaseURL(srv.URL).WithTaskList("list-1")
}

func TestFromGraphConversion(t *testing.T) {
	gt := &todoTask{
		ID:         "t1",
		Title:      "Dentist",
		Body:       &itemBody{Content: "bring insurance card\r\n", ContentType: "text"},
		Status:     "notStarted",
		Importance: "high",
		Categories: []string{"health"},
		DueDateTime: &dateTimeTimeZone{
			DateTime: "2026-04-02T14:30:00.0000000",
			TimeZone: "UTC",
		},
		IsReminderOn: true,
		ReminderDateTime: &dateTimeTimeZone{
			DateTime: "2026-04-02T13:00:00.0000000",
			TimeZone: "UTC",
		},
		ChecklistItems: []checklistItem{
			{DisplayName: "confirm appointment", IsChecked: true},
			{DisplayName: "arrange ride"},
		},
		LastModifiedDateTime: "2026-03-20T08:00:00Z",
	}

	got := fromGraph(gt)
	if got.ID != "t1" || got.Title != "Dentist" || got.Notes != "bring insurance card" {
		t.Errorf("basic fields: %+v", got)
	}
	if got.DueAt != "2026-04-02" || got.DueTime != "14:30" {
		t.Errorf("due = %q %q", got.DueAt, got.DueTime)
	}
	if got.Importance != task.ImportanceHigh || got.Status != task.StatusActive {
		t.Errorf("importance/status: %+v", got)
	}
	if got.Reminder == nil || got.Reminder.Hour() != 13 {
		t.Errorf("reminder = %v", got.Reminder)
	}
	if len(got.Steps) != 2 || !got.Steps[0].Checked || got.Steps[1].Text != "arrange ride" {
		t.Errorf("steps = %+v", got.Steps)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updatedAt not parsed")
	}
}

func TestFromGraphMidnightDueHasNoTime(t *testing.T) {
	gt := &todoTask{
		Title:       "All day",
		DueDateTime: &dateTimeTimeZone{DateTime: "2026-04-02T00:00:00.0000000", TimeZone: "UTC"},
	}
	got := fromGraph(gt)
	if got.DueAt != "2026-04-02" || got.DueTime != "" {
		t.Errorf("due = %q %q, midnight should mean date-only", got.DueAt, got.DueTime)
	}
}

func TestToGraphFoldsDueTime(t *testing.T) {
	gt := toGraph(task.Task{Title: "T", DueAt: "2026-04-02", DueTime: "09:15"})
	if gt.DueDateTime == nil || gt.DueDateTime.DateTime != "2026-04-02T09:15:00.0000000" {
		t.Errorf("dueDateTime = %+v", gt.DueDateTime)
	}
	if gt.Status != "notStarted" || gt.Importance != "normal" {
		t.Errorf("defaults: status=%q importance=%q", gt.Status, gt.Importance)
	}
}

func TestListTasksFollowsNextLink(t *testing.T) {
	var mux http.ServeMux
	var secondURL string
	page := func(tasks []todoTask, next string) []byte {
		body, _ := json.Marshal(map[string]interface{}{
			"value":           tasks,
			"@odata.nextLink": next,
		})
		return body
	}
	mux.HandleFunc("/me/todo/lists/list-1/tasks", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write(page([]todoTask{{ID: "b", Title: "Second"}}, ""))
			return
		}
		_, _ = w.Write(page([]todoTask{{ID: "a", Title: "First"}}, secondURL))
	})

	p := testProvider(t, &mux)
	secondURL = p.c.BaseURL + "/me/todo/lists/list-1/tasks?page=2"

	got, err := p.ListTasks(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("tasks = %+v", got)
	}
}

func TestListTasksSinceFilter(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var gotFilter string
	var mux http.ServeMux
	mux.HandleFunc("/me/todo/lists/list-1/tasks", func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("$filter")
		fmt.Fprint(w, `{"value":[]}`)
	})

	p := testProvider(t, &mux)
	if _, err := p.ListTasks(context.Background(), &since); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	want := "lastModifiedDateTime ge 2026-03-01T00:00:00Z"
	if gotFilter != want {
		t.Errorf("filter = %q, want %q", gotFilter, want)
	}
}

func TestRequestHonorsRetryAfter(t *testing.T) {
	attempts := 0
	var mux http.ServeMux
	mux.HandleFunc("/me/todo/lists/list-1/tasks", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"value":[{"id":"a","title":"After throttle"}]}`)
	})

	p := testProvider(t, &mux)
	start := time.Now()
	got, err := p.ListTasks(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(got) != 1 || attempts != 2 {
		t.Errorf("tasks = %d, attempts = %d", len(got), attempts)
	}
	if elapsed := time.Since(start); elapsed < 1*time.Second {
		t.Errorf("retried after %v, expected at least the Retry-After delay", elapsed)
	}
}

func TestDeleteTaskTreats404AsGone(t *testing.T) {
	var mux http.ServeMux
	mux.HandleFunc("/me/todo/lists/list-1/tasks/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	p := testProvider(t, &mux)
	if err := p.DeleteTask(context.Background(), "missing"); err != nil {
		t.Errorf("DeleteTask on missing id = %v, want nil", err)
	}
}

func TestUpsertCreatesWithoutID(t *testing.T) {
	var mux http.ServeMux
	mux.HandleFunc("/me/todo/lists/list-1/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var in todoTask
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		in.ID = "srv-1"
		in.LastModifiedDateTime = "2026-03-20T08:00:00Z"
		_ = json.NewEncoder(w).Encode(in)
	})

	p := testProvider(t, &mux)
	out, err := p.UpsertTask(context.Background(), task.Task{Title: "New"})
	if err != nil {
		t.Fatalf("UpsertTask: %v", err)
	}
	if out.ID != "srv-1" || out.Title != "New" {
		t.Errorf("out = %+v", out)
	}
}
