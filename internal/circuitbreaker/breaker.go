// Package circuitbreaker guards the REST transport against a failing
// endpoint. After enough consecutive failures the breaker opens and
// requests fail fast instead of waiting out timeouts against an
// exchange that is down or under maintenance.
package circuitbreaker

import (
	"sync"
	"time"

	"whitebit/pkg/core"
)

// State is the breaker's position in its lifecycle.
type State int32

// Breaker states. Closed passes requests through, Open fails them
// fast, HalfOpen probes the endpoint with live traffic.
const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config tunes the breaker thresholds.
type Config struct {
	// FailThreshold is the number of consecutive failures that opens
	// the breaker.
	FailThreshold int
	// SuccessThreshold is the number of consecutive half-open successes
	// that closes it again.
	SuccessThreshold int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
}

// DefaultConfig returns thresholds suited to the REST transport: open
// after 5 straight failures, probe after 30 seconds, close after 2
// successful probes.
func DefaultConfig() Config {
	return Config{
		FailThreshold:    5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
	}
}

// Breaker is a consecutive-failure circuit breaker. All methods are safe
// for concurrent use.
type Breaker struct {
	failThreshold    int
	successThreshold int
	cooldown         time.Duration
	clock            func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
}

// New creates a Breaker, rejecting non-positive thresholds.
func New(config Config) (*Breaker, error) {
	if config.FailThreshold <= 0 {
		return nil, core.NewConfigError("failThreshold", "must be positive")
	}
	if config.SuccessThreshold <= 0 {
		return nil, core.NewConfigError("successThreshold", "must be positive")
	}
	if config.Cooldown <= 0 {
		return nil, core.NewConfigError("cooldown", "must be positive")
	}

	return &Breaker{
		failThreshold:    config.FailThreshold,
		successThreshold: config.SuccessThreshold,
		cooldown:         config.Cooldown,
		clock:            time.Now,
	}, nil
}

// Allow reports whether a request may proceed. An open breaker past its
// cooldown transitions to half-open and admits the probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.clock().Sub(b.openedAt) >= b.cooldown {
			b.state = StateHalfOpen
			b.successes = 0
			return true
		}
		return false
	}
	return false
}

// Record feeds the outcome of an admitted request back into the breaker.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.failThreshold {
			b.open()
		}
	case StateHalfOpen:
		if !success {
			b.open()
			return
		}
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	case StateOpen:
		// A late result from before the breaker opened; nothing to do.
	}
}

func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = b.clock()
	b.failures = 0
	b.successes = 0
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker closed and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
