package state

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// StateFileName is the state document's file name inside the state dir.
const StateFileName = "state.json"

// Store binds the sync state document to a state directory and provides
// crash-safe load/save.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory the store is bound to.
func (st *Store) Dir() string {
	return st.dir
}

// Path returns the full path of the state document.
func (st *Store) Path() string {
	return filepath.Join(st.dir, StateFileName)
}

// Load reads the state document. A missing file yields the empty default
// state; a malformed file is an error and is never silently replaced.
// Documents without a version field are treated as v0 and migrated in
// memory; the migrated form reaches disk on the next Save.
func (st *Store) Load() (*SyncState, error) {
	data, err := os.ReadFile(st.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var s SyncState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s (refusing to overwrite a corrupt state file): %w", StateFileName, err)
	}

	migrate(&s)
	return &s, nil
}

// migrate fills defaults for documents written before the version field
// existed. Read-only with respect to disk.
func migrate(s *SyncState) {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	if s.Mappings == nil {
		s.Mappings = []*Mapping{}
	}
	if s.Tombstones == nil {
		s.Tombstones = []Tombstone{}
	}
	for _, m := range s.Mappings {
		if m.ByProvider == nil {
			m.ByProvider = map[string]string{}
		}
		if m.UpdatedAt.IsZero() {
			if m.Canonical != nil && !m.Canonical.UpdatedAt.IsZero() {
				m.UpdatedAt = m.Canonical.UpdatedAt
			} else {
				m.UpdatedAt = time.Now().UTC()
			}
		}
	}
}

// Save persists the state document crash-atomically: serialize to a
// sibling temp file, fsync, copy the current file to a .bak sibling
// (best-effort), then rename the temp file onto the target.
func (st *Store) Save(s *SyncState) error {
	if err := os.MkdirAll(st.dir, 0750); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	s.Version = CurrentVersion
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	target := st.Path()
	tmp, err := os.CreateTemp(st.dir, StateFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("syncing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp state file: %w", err)
	}

	// Best-effort backup of the previous document. Absence is fine.
	if err := copyFile(target, target+".bak"); err != nil && !os.IsNotExist(err) {
		_ = os.Remove(target + ".bak")
	}

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming state file into place: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- paths derived from the configured state dir
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
