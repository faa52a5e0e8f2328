package history

import (
	"testing"
	"time"

	"github.com/salaamdev/task-sync/internal/engine"
)

func report(startedAt time.Time, created int) *engine.SyncReport {
	r := &engine.SyncReport{
		Mode:      engine.ModeBidirectional,
		Providers: []string{"google", "microsoft"},
		StartedAt: startedAt,
		Duration:  1500 * time.Millisecond,
	}
	r.Counts.Created = created
	return r
}

func TestRecordAndRecent(t *testing.T) {
	s, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := s.Record(report(start.Add(time.Duration(i)*time.Hour), i)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if got[0].Created != 2 || got[1].Created != 1 {
		t.Errorf("ordering wrong: %+v", got)
	}
	if got[0].Mode != "bidirectional" || len(got[0].Providers) != 2 {
		t.Errorf("row = %+v", got[0])
	}
	if !got[0].StartedAt.Equal(start.Add(2 * time.Hour)) {
		t.Errorf("startedAt = %v", got[0].StartedAt)
	}
	if got[0].Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", got[0].Duration)
	}
}

func TestRetentionTrims(t *testing.T) {
	s, err := Open(t.TempDir(), 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.Record(report(start, i)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("rows after trim = %d, want 2", len(got))
	}
	if got[0].Created != 4 {
		t.Errorf("newest row = %+v", got[0])
	}
}
