// Package ratelimit provides a sliding window rate limiter for controlling
// outbound request rates against external resolvers and APIs.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter implements a sliding window rate limiter. It keeps the timestamps of
// the requests issued within the trailing window; Throttle blocks the caller
// until issuing one more request would not exceed maxRequests inside the window.
//
// A single Limiter instance is shared by every caller that talks to the same
// resolver class, so the window is enforced process-wide for the run.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	stamps      []time.Time

	// now is injectable for tests
	now func() time.Time
}

// New creates a sliding window limiter allowing maxRequests per window.
//
// Example:
//
//	limiter := ratelimit.New(10, time.Second) // 10 requests per trailing second
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		stamps:      make([]time.Time, 0, maxRequests),
		now:         time.Now,
	}
}

// Throttle suspends the caller until another request fits inside the window,
// then records the request timestamp. It returns early with the context error
// if ctx is cancelled while waiting. There are no other error conditions.
func (l *Limiter) Throttle(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.evict(now)

		if len(l.stamps) < l.maxRequests {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}

		// La ventana está llena: esperar hasta que expire el timestamp más antiguo.
		wait := l.window - now.Sub(l.stamps[0])
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Pending returns how many requests are currently recorded inside the window.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(l.now())
	return len(l.stamps)
}

// evict drops timestamps older than the trailing window. Caller holds l.mu.
func (l *Limiter) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}
