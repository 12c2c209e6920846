package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(Policy{Limit: 3, Window: time.Minute}, c.Now)

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "1.2.3.4:/api/checkout")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 2-i, d.Remaining)
		c.Advance(10 * time.Second)
	}

	d, err := l.Allow(ctx, "1.2.3.4:/api/checkout")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	other, err := l.Allow(ctx, "5.6.7.8:/api/checkout")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	// The first hit leaves the window after one minute.
	c.Advance(30 * time.Second)
	d, err = l.Allow(ctx, "1.2.3.4:/api/checkout")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Policy{Limit: 10, Window: time.Hour}, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Allow(ctx, "k")
			if err == nil && d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestMemoryLimiter_SweepDropsIdleKeys(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(Policy{Limit: 5000, Window: time.Second}, c.Now)

	_, _ = l.Allow(ctx, "idle")
	c.Advance(2 * time.Second)
	for i := 0; i < 999; i++ {
		_, _ = l.Allow(ctx, "busy")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.windows["idle"]
	assert.False(t, ok)
}

func TestPrune(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hits := []time.Time{base, base.Add(time.Second), base.Add(2 * time.Second)}

	assert.Len(t, prune(hits, base), 2)
	assert.Len(t, prune(hits, base.Add(5*time.Second)), 0)
	assert.Len(t, prune(nil, base), 0)
}
