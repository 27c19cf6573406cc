package router

import (
	"sync"
	"time"

	"github.com/newthinker/scribe/internal/core"
)

// limiter tracks per-provider request windows and cooldowns. It is the
// only state shared across concurrent dispatches, so every method takes
// the lock.
type limiter struct {
	mu      sync.Mutex
	window  time.Duration
	calls   map[core.ProviderKind][]time.Time
	blocked map[core.ProviderKind]time.Time
	now     func() time.Time
}

func newLimiter(now func() time.Time) *limiter {
	if now == nil {
		now = time.Now
	}
	return &limiter{
		window:  time.Minute,
		calls:   make(map[core.ProviderKind][]time.Time),
		blocked: make(map[core.ProviderKind]time.Time),
		now:     now,
	}
}

// Acquire reserves one call against the provider's requests-per-minute
// budget, honoring any active cooldown. Check and reservation share one
// critical section so two concurrent dispatches can never both claim a
// provider whose window is exhausted.
func (l *limiter) Acquire(kind core.ProviderKind, rpm int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if until, ok := l.blocked[kind]; ok {
		if now.Before(until) {
			return false
		}
		delete(l.blocked, kind)
	}

	l.prune(kind, now)
	if rpm > 0 && len(l.calls[kind]) >= rpm {
		return false
	}
	l.calls[kind] = append(l.calls[kind], now)
	return true
}

// Block excludes the provider from dispatch until the given time.
func (l *limiter) Block(kind core.ProviderKind, until time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blocked[kind] = until
}

// prune drops window entries older than one window. Caller holds the lock.
func (l *limiter) prune(kind core.ProviderKind, now time.Time) {
	cutoff := now.Add(-l.window)
	calls := l.calls[kind]
	i := 0
	for i < len(calls) && !calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.calls[kind] = calls[i:]
	}
}
