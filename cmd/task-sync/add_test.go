package main

import (
	"testing"
	"time"
)

func TestParseDueISODate(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	dueAt, dueTime, err := parseDue("2026-12-24", now)
	if err != nil {
		t.Fatalf("parseDue: %v", err)
	}
	if dueAt != "2026-12-24" || dueTime != "" {
		t.Errorf("got %q %q", dueAt, dueTime)
	}
}

func TestParseDueNaturalLanguage(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	dueAt, _, err := parseDue("tomorrow", now)
	if err != nil {
		t.Fatalf("parseDue: %v", err)
	}
	if dueAt != "2026-08-02" {
		t.Errorf("dueAt = %q, want 2026-08-02", dueAt)
	}
}

func TestParseDueWithTimeOfDay(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	dueAt, dueTime, err := parseDue("tomorrow at 5pm", now)
	if err != nil {
		t.Fatalf("parseDue: %v", err)
	}
	if dueAt != "2026-08-02" || dueTime != "17:00" {
		t.Errorf("got %q %q", dueAt, dueTime)
	}
}

func TestParseDueGarbage(t *testing.T) {
	if _, _, err := parseDue("not a date at all xyzzy", time.Now()); err == nil {
		t.Error("expected an error for unparseable input")
	}
}
