package threatintel

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window call budget: at most maxCalls within any
// window. Callers decide whether to queue or fail fast; the limiter never
// blocks.
type RateLimiter struct {
	mu       sync.Mutex
	maxCalls int
	window   time.Duration
	calls    []time.Time
	now      func() time.Time
}

// NewRateLimiter creates a limiter allowing maxCalls per window
func NewRateLimiter(maxCalls int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
	}
}

// CanCall reports whether a call is currently within budget
func (r *RateLimiter) CanCall() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evict(r.now())
	return len(r.calls) < r.maxCalls
}

// AddCall records a call at the current time
func (r *RateLimiter) AddCall() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, r.now())
}

// WaitTime returns how long until the next call is admitted; zero when
// under budget.
func (r *RateLimiter) WaitTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waitLocked(r.now())
}

// Reserve admits and records a call in one step. The check and the record
// happen under one lock so concurrent callers cannot over-admit. When the
// budget is exhausted it returns false with the time until the window
// frees up.
func (r *RateLimiter) Reserve() (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evict(now)
	if len(r.calls) < r.maxCalls {
		r.calls = append(r.calls, now)
		return true, 0
	}
	return false, r.waitLocked(now)
}

// evict drops timestamps older than the window. Callers hold the lock.
func (r *RateLimiter) evict(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.calls) && r.calls[i].Before(cutoff) {
		i++
	}
	r.calls = r.calls[i:]
}

func (r *RateLimiter) waitLocked(now time.Time) time.Duration {
	r.evict(now)
	if len(r.calls) < r.maxCalls {
		return 0
	}
	if len(r.calls) == 0 {
		return 0
	}
	wait := r.calls[0].Add(r.window).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}
