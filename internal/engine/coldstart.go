package engine

import (
	"sort"
	"strings"

	"github.com/salaamdev/task-sync/internal/state"
	"github.com/salaamdev/task-sync/internal/task"
)

// coldStart runs on the first cycle against an empty state: it groups
// tasks across healthy providers by normalized (title, notes) and links
// each multi-provider group into one mapping, so pre-existing copies of
// the same task are matched instead of duplicated. Single-provider tasks
// are left for the regular ensure-mapping pass.
func (e *Engine) coldStart(st *state.SyncState, snaps map[string]*snapshot, healthy []string) int {
	type member struct {
		provider string
		t        task.Task
	}
	groups := map[string][]member{}
	var order []string

	for _, name := range healthy {
		for _, t := range snaps[name].all {
			if t.Deleted() || t.Title == "" {
				continue
			}
			key := matchKey(t)
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], member{provider: name, t: t})
		}
	}

	now := e.cfg.Now()
	matched := 0
	for _, key := range order {
		members := groups[key]
		byProvider := map[string]string{}
		var first *task.Task
		for _, m := range members {
			if _, taken := byProvider[m.provider]; taken {
				continue // one id per provider; extras stay unmapped copies
			}
			byProvider[m.provider] = m.t.ID
			if first == nil {
				t := m.t
				first = &t
			}
		}
		if len(byProvider) < 2 {
			continue
		}

		providers := make([]string, 0, len(byProvider))
		for p := range byProvider {
			providers = append(providers, p)
		}
		sort.Strings(providers)

		m := st.EnsureMapping(providers[0], byProvider[providers[0]], now)
		for _, p := range providers[1:] {
			st.UpsertProviderID(m.CanonicalID, p, byProvider[p], now)
		}
		st.UpsertCanonical(m.CanonicalID, *first, now)
		matched++

		e.log.WithFields(map[string]interface{}{
			"canonicalId": m.CanonicalID,
			"title":       first.Title,
			"providers":   providers,
		}).Info("cold start: matched existing task across providers")
	}
	return matched
}

// matchKey builds the cold-start grouping key: lowercased, trimmed,
// whitespace-collapsed title and notes.
func matchKey(t task.Task) string {
	return normalizeText(t.Title) + "\x00" + normalizeText(t.Notes)
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
