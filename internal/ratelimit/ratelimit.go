// Package ratelimit implements sliding-window request limits keyed by client and route.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Policy allows Limit requests per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter keeps request timestamps per key in process memory.
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time
	calls   int
}

// NewMemoryLimiter creates an in-process limiter. A nil clock defaults to time.Now.
func NewMemoryLimiter(policy Policy, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		policy:  policy,
		now:     now,
		windows: make(map[string][]time.Time),
	}
}

// Allow records the request when it fits in the window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()
	cutoff := now.Add(-l.policy.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%1000 == 0 {
		l.sweep(cutoff)
	}

	hits := prune(l.windows[key], cutoff)
	if len(hits) >= l.policy.Limit {
		l.windows[key] = hits
		retry := time.Duration(0)
		if len(hits) > 0 {
			retry = hits[0].Add(l.policy.Window).Sub(now)
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retry}, nil
	}

	hits = append(hits, now)
	l.windows[key] = hits
	return Decision{Allowed: true, Remaining: l.policy.Limit - len(hits)}, nil
}

// sweep drops keys with no hits inside the window.
func (l *MemoryLimiter) sweep(cutoff time.Time) {
	for key, hits := range l.windows {
		if len(prune(hits, cutoff)) == 0 {
			delete(l.windows, key)
		}
	}
}

// prune removes hits at or before cutoff. hits is ordered oldest first.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
