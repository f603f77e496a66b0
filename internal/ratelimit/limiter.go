// Package ratelimit provides a sliding trailing-window rate limiter.
// At most capacity admissions are granted within any window-length
// trailing interval; excess callers block until the oldest admission
// ages out of the window.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"whitebit/pkg/core"
)

// Clock supplies the current time. It is injectable so tests can drive
// the limiter deterministically.
type Clock func() time.Time

// Limiter admits calls so that no more than capacity admissions occur
// within the trailing window. One instance serves one rate tier and is
// shared by reference across all concurrent callers of that tier.
type Limiter struct {
	capacity int
	window   time.Duration
	clock    Clock

	mu sync.Mutex
	// timestamps holds the admission instants still inside the trailing
	// window, oldest first. Entries are evicted lazily on each attempt.
	timestamps []time.Time

	metrics Metrics
}

// Metrics tracks limiter usage with atomic counters.
type Metrics struct {
	totalRequests atomic.Int64
	admitted      atomic.Int64
	waited        atomic.Int64
	canceled      atomic.Int64
}

// MetricsSnapshot is a point-in-time capture of limiter statistics.
type MetricsSnapshot struct {
	// TotalRequests is the total number of Wait calls.
	TotalRequests int64
	// Admitted is the number of calls granted admission.
	Admitted int64
	// Waited is the number of calls that had to sleep before admission.
	Waited int64
	// Canceled is the number of calls abandoned via context cancellation.
	Canceled int64
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the time source used by the limiter.
func WithClock(clock Clock) Option {
	return func(l *Limiter) {
		l.clock = clock
	}
}

// New creates a Limiter granting at most capacity admissions per window.
// It fails with a ConfigError if capacity or window is not positive;
// misconfiguration is rejected here, never at call time.
func New(capacity int, window time.Duration, opts ...Option) (*Limiter, error) {
	if capacity <= 0 {
		return nil, core.NewConfigError("capacity", "must be positive")
	}
	if window <= 0 {
		return nil, core.NewConfigError("window", "must be positive")
	}

	l := &Limiter{
		capacity:   capacity,
		window:     window,
		clock:      time.Now,
		timestamps: make([]time.Time, 0, capacity),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// NewTier creates a Limiter from a rate tier definition.
func NewTier(tier core.RateTier, opts ...Option) (*Limiter, error) {
	return New(tier.Capacity, tier.Window, opts...)
}

// Wait blocks until admission is granted or the context is canceled.
// No timestamp is recorded until the caller is actually admitted, so a
// canceled wait leaves no speculative reservation to roll back. After
// sleeping the whole procedure re-checks: other callers may have been
// admitted in the meantime.
func (l *Limiter) Wait(ctx context.Context) error {
	l.metrics.totalRequests.Add(1)
	slept := false

	for {
		if err := ctx.Err(); err != nil {
			l.metrics.canceled.Add(1)
			return err
		}

		wait, ok := l.tryAcquire()
		if ok {
			l.metrics.admitted.Add(1)
			if slept {
				l.metrics.waited.Add(1)
			}
			return nil
		}

		slept = true
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.metrics.canceled.Add(1)
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryAcquire evicts expired timestamps and either records an admission
// or reports how long until the oldest remaining entry ages out.
func (l *Limiter) tryAcquire() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	cutoff := now.Add(-l.window)

	expired := 0
	for expired < len(l.timestamps) && !l.timestamps[expired].After(cutoff) {
		expired++
	}
	if expired > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[expired:]...)
	}

	if len(l.timestamps) < l.capacity {
		l.timestamps = append(l.timestamps, now)
		return 0, true
	}

	return l.timestamps[0].Add(l.window).Sub(now), false
}

// Capacity returns the maximum admissions per window.
func (l *Limiter) Capacity() int {
	return l.capacity
}

// Window returns the trailing window duration.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Pending returns the number of admissions currently inside the window.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.clock().Add(-l.window)
	n := 0
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}

// Metrics returns a snapshot of the current limiter statistics.
func (l *Limiter) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests: l.metrics.totalRequests.Load(),
		Admitted:      l.metrics.admitted.Load(),
		Waited:        l.metrics.waited.Load(),
		Canceled:      l.metrics.canceled.Load(),
	}
}
