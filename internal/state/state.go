// Package state holds the persistent sync state: mappings between
// canonical ids and provider-local ids, canonical baselines, tombstones,
// and the incremental-sync watermark. The state document is the only
// memory the engine carries between cycles.
package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/salaamdev/task-sync/internal/task"
)

// CurrentVersion is the schema version written by Save. Files without a
// version field are treated as v0 and migrated on load.
const CurrentVersion = 1

// Mapping links one canonical task to its provider-local ids. Canonical is
// the baseline used for three-way diffs: the last value successfully
// reconciled to every healthy provider.
type Mapping struct {
	CanonicalID string            `json:"canonicalId"`
	ByProvider  map[string]string `json:"byProvider"`
	Canonical   *task.Task        `json:"canonical,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Tombstone forbids recreating a provider-local id for a TTL window after
// a deletion was observed or propagated.
type Tombstone struct {
	Provider  string    `json:"provider"`
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}

// SyncState is the persisted document.
type SyncState struct {
	Version    int         `json:"version"`
	LastSyncAt *time.Time  `json:"lastSyncAt,omitempty"`
	Mappings   []*Mapping  `json:"mappings"`
	Tombstones []Tombstone `json:"tombstones"`
}

// NewState returns an empty state at the current schema version.
func NewState() *SyncState {
	return &SyncState{
		Version:    CurrentVersion,
		Mappings:   []*Mapping{},
		Tombstones: []Tombstone{},
	}
}

// FindMapping returns the mapping holding the given provider-local id, or
// nil when none does.
func (s *SyncState) FindMapping(provider, id string) *Mapping {
	for _, m := range s.Mappings {
		if m.ByProvider[provider] == id {
			return m
		}
	}
	return nil
}

// FindByCanonicalID returns the mapping with the given canonical id.
func (s *SyncState) FindByCanonicalID(canonicalID string) *Mapping {
	for _, m := range s.Mappings {
		if m.CanonicalID == canonicalID {
			return m
		}
	}
	return nil
}

// EnsureMapping returns the mapping holding (provider, id), inserting a
// fresh one when the pair is unseen. Idempotent: the same pair always
// lands in the same mapping, so no two mappings can share a provider id.
func (s *SyncState) EnsureMapping(provider, id string, now time.Time) *Mapping {
	if m := s.FindMapping(provider, id); m != nil {
		return m
	}
	m := &Mapping{
		CanonicalID: uuid.NewString(),
		ByProvider:  map[string]string{provider: id},
		UpdatedAt:   now,
	}
	s.Mappings = append(s.Mappings, m)
	return m
}

// UpsertProviderID records a provider-local id on a mapping. If another
// mapping already holds the pair it is detached there first, keeping
// (provider, id) pairs unique across the whole state.
func (s *SyncState) UpsertProviderID(canonicalID, provider, id string, now time.Time) {
	for _, m := range s.Mappings {
		if m.CanonicalID != canonicalID && m.ByProvider[provider] == id {
			delete(m.ByProvider, provider)
			m.UpdatedAt = now
		}
	}
	if m := s.FindByCanonicalID(canonicalID); m != nil {
		if m.ByProvider == nil {
			m.ByProvider = map[string]string{}
		}
		m.ByProvider[provider] = id
		m.UpdatedAt = now
	}
}

// UpsertCanonical stores a new canonical baseline on a mapping. The stored
// copy has its provider-local id cleared.
func (s *SyncState) UpsertCanonical(canonicalID string, canonical task.Task, now time.Time) {
	m := s.FindByCanonicalID(canonicalID)
	if m == nil {
		return
	}
	c := canonical.Clone()
	c.ID = ""
	m.Canonical = &c
	m.UpdatedAt = now
}

// RemoveMapping drops the mapping with the given canonical id.
func (s *SyncState) RemoveMapping(canonicalID string) {
	out := s.Mappings[:0]
	for _, m := range s.Mappings {
		if m.CanonicalID != canonicalID {
			out = append(out, m)
		}
	}
	s.Mappings = out
}

// AddTombstone records a tombstone for (provider, id). Re-tombstoning an
// already tombstoned pair is a no-op so the original deletion time keeps
// driving the TTL.
func (s *SyncState) AddTombstone(provider, id string, deletedAt time.Time) {
	if id == "" || s.IsTombstoned(provider, id) {
		return
	}
	s.Tombstones = append(s.Tombstones, Tombstone{Provider: provider, ID: id, DeletedAt: deletedAt})
}

// IsTombstoned reports whether (provider, id) has an unexpired tombstone.
func (s *SyncState) IsTombstoned(provider, id string) bool {
	for _, t := range s.Tombstones {
		if t.Provider == provider && t.ID == id {
			return true
		}
	}
	return false
}

// PruneExpiredTombstones drops tombstones older than ttlDays and returns
// how many were removed.
func (s *SyncState) PruneExpiredTombstones(ttlDays int, now time.Time) int {
	if ttlDays <= 0 {
		return 0
	}
	cutoff := now.AddDate(0, 0, -ttlDays)
	kept := s.Tombstones[:0]
	pruned := 0
	for _, t := range s.Tombstones {
		if t.DeletedAt.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, t)
	}
	s.Tombstones = kept
	return pruned
}
