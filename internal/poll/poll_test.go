package poll

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunExecutesCyclesUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, Options{
			Interval: 10 * time.Millisecond,
			RunOnce: func(context.Context) error {
				if runs.Add(1) >= 3 {
					cancel()
				}
				return nil
			},
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poll loop did not stop")
	}
	if runs.Load() < 3 {
		t.Errorf("runs = %d, want >= 3", runs.Load())
	}
}

func TestRunSurvivesCycleErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, Options{
			Interval: 10 * time.Millisecond,
			RunOnce: func(context.Context) error {
				if runs.Add(1) >= 2 {
					cancel()
				}
				return errors.New("transient outage")
			},
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poll loop died on cycle error")
	}
	if runs.Load() < 2 {
		t.Errorf("runs = %d, loop should continue past errors", runs.Load())
	}
}

func TestConfigWatchSignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("mode: bidirectional\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 1)
	stop, err := watchConfig(path, changed)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("mode: mirror\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("config write not observed")
	}
}
