package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Monkachunkaa/tote-storage-api/internal/usecase"
)

// MemoryRateLimiter keeps a sliding window of request timestamps per key
// in process memory. Best-effort only: state resets with the process and
// is invisible to other instances. Use the redis limiter when the bound
// must hold across instances.
type MemoryRateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	hits   map[string][]time.Time

	now func() time.Time
}

func NewMemoryRateLimiter(max int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		max:    max,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	horizon := now.Add(-l.window)

	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(horizon) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.max {
		l.hits[key] = kept
		return false, nil
	}

	l.hits[key] = append(kept, now)
	return true, nil
}

var _ usecase.RateLimiter = (*MemoryRateLimiter)(nil)
