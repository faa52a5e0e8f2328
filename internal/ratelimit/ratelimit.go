// Package ratelimit caps outbound request rates per origin. Both provider
// clients consult the shared registry before every HTTP call so a chatty
// cycle cannot trip provider throttling.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Registry hands out one limiter per origin. A zero requests-per-second
// cap disables limiting entirely.
type Registry struct {
	mu       sync.Mutex
	rps      float64
	burst    int
	limiters map[string]*rate.Limiter
}

// NewRegistry returns a registry capping each origin at rps requests per
// second. rps <= 0 means unlimited.
func NewRegistry(rps float64) *Registry {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Registry{
		rps:      rps,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the origin's limiter admits one request, or until ctx
// is done.
func (r *Registry) Wait(ctx context.Context, origin string) error {
	if r == nil || r.rps <= 0 {
		return nil
	}
	r.mu.Lock()
	l, ok := r.limiters[origin]
	if !ok {
		l = rate.NewLimiter(rate.Limit(r.rps), r.burst)
		r.limiters[origin] = l
	}
	r.mu.Unlock()
	return l.Wait(ctx)
}
