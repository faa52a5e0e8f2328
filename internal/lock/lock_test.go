package lock

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	g, err := Acquire(dir)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LockFileName))
	if err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
	var info struct {
		PID int       `json:"pid"`
		At  time.Time `json:"at"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("lock file not JSON: %v", err)
	}
	if info.PID != os.Getpid() {
		t.Errorf("pid = %d, want %d", info.PID, os.Getpid())
	}
	if data[len(data)-1] != '\n' {
		t.Error("lock file missing trailing newline")
	}

	g.Release()
	if _, err := os.Stat(filepath.Join(dir, LockFileName)); !os.IsNotExist(err) {
		t.Error("lock file survived Release")
	}
}

func TestAcquireHeldByLiveProcess(t *testing.T) {
	dir := t.TempDir()
	g, err := Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Release()

	// This process is alive and holds the lock, so a second acquire fails.
	if _, err := Acquire(dir); !errors.Is(err, ErrHeld) {
		t.Fatalf("second acquire: %v, want ErrHeld", err)
	}
}

func TestAcquireStealsDeadHolder(t *testing.T) {
	dir := t.TempDir()
	// A pid that cannot be running: beyond the default pid_max on every
	// platform we support.
	stale := []byte(`{"pid": 99999999, "at": "2026-01-01T00:00:00Z"}` + "\n")
	if err := os.WriteFile(filepath.Join(dir, LockFileName), stale, 0600); err != nil {
		t.Fatal(err)
	}

	g, err := Acquire(dir)
	if err != nil {
		t.Fatalf("acquire over dead holder: %v", err)
	}
	g.Release()
}

func TestAcquireStealsUnparsableLock(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LockFileName), []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	g, err := Acquire(dir)
	if err != nil {
		t.Fatalf("acquire over unparsable lock: %v", err)
	}
	g.Release()
}

func TestReleaseIdempotent(t *testing.T) {
	g, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	g.Release()
	g.Release() // must not panic
}
