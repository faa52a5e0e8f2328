// Package lock provides process-level mutual exclusion on a state
// directory via a pid lock file. One engine cycle runs per state dir at a
// time; a crashed holder's lock is stolen once its pid is gone.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LockFileName is the lock file's name inside the state directory.
const LockFileName = "lock"

// ErrHeld is returned when another live process holds the lock.
var ErrHeld = errors.New("another run is in progress")

type lockInfo struct {
	PID int       `json:"pid"`
	At  time.Time `json:"at"`
}

// Guard represents a held lock. Release is safe to call on every exit
// path, including after errors.
type Guard struct {
	path     string
	released bool
}

// Acquire takes the lock for dir. If the lock file exists, the recorded
// holder is probed: a dead pid or an unparsable file means a stale lock,
// which is overwritten; a live holder yields ErrHeld.
func Acquire(dir string) (*Guard, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	path := filepath.Join(dir, LockFileName)

	if err := writeLock(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY); err == nil {
		return &Guard{path: path}, nil
	} else if !os.IsExist(err) {
		return nil, fmt.Errorf("creating lock file: %w", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path inside the configured state dir
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading existing lock file: %w", err)
	}

	var info lockInfo
	stale := err != nil || json.Unmarshal(data, &info) != nil || info.PID <= 0
	if !stale && processAlive(info.PID) {
		return nil, fmt.Errorf("%w (pid %d since %s)", ErrHeld, info.PID, info.At.Format(time.RFC3339))
	}

	// Stale or unparsable: take over.
	if err := writeLock(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY); err != nil {
		return nil, fmt.Errorf("overwriting stale lock file: %w", err)
	}
	return &Guard{path: path}, nil
}

func writeLock(path string, flags int) error {
	f, err := os.OpenFile(path, flags, 0600) // #nosec G304
	if err != nil {
		return err
	}
	data, merr := json.Marshal(lockInfo{PID: os.Getpid(), At: time.Now().UTC()})
	if merr != nil {
		_ = f.Close()
		return merr
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Release unlinks the lock file. Errors are ignored: a failed unlink only
// means the next Acquire does a staleness probe.
func (g *Guard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	_ = os.Remove(g.path)
}
