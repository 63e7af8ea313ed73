// Package circuitbreaker protects the analyzer from repeatedly hammering an
// upstream that is already failing. Each adapter owns one breaker.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State represents the current state of the circuit breaker
type State int

// Circuit breaker states
const (
	StateClosed   State = iota // normal operation
	StateOpen                  // tripped, calls fail fast
	StateHalfOpen              // probing whether the upstream recovered
)

// String returns a readable state name for status endpoints.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Options configures a Breaker.
type Options struct {
	// Consecutive failures before the circuit opens
	FailureThreshold int

	// How long the circuit stays open before allowing a probe
	Cooldown time.Duration

	// Consecutive successes in half-open state required to close
	SuccessThreshold int

	// Called when the circuit trips
	OnTrip func(service string)
}

// Breaker tracks consecutive failures for a single upstream service.
type Breaker struct {
	service string
	opts    Options

	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	lastTrip     time.Time
	now          func() time.Time
}

// New creates a Breaker for the named service.
func New(service string, opts Options) *Breaker {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 5
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 2 * time.Minute
	}
	if opts.SuccessThreshold <= 0 {
		opts.SuccessThreshold = 2
	}
	return &Breaker{
		service: service,
		opts:    opts,
		state:   StateClosed,
		now:     time.Now,
	}
}

// Allow reports whether a call may proceed. While open, calls are rejected
// until the cooldown elapses; the first call after cooldown probes half-open.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Sub(b.lastTrip) >= b.opts.Cooldown {
			b.state = StateHalfOpen
			b.successes = 0
			logrus.WithField("service", b.service).Info("Circuit breaker half-open, probing upstream")
			return true
		}
		return false
	}
	return true
}

// Success records a successful call.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.opts.SuccessThreshold {
			b.state = StateClosed
			logrus.WithField("service", b.service).Info("Circuit breaker closed")
		}
	}
}

// Failure records a failed call, tripping the circuit when the consecutive
// failure threshold is reached. A failure during half-open re-opens at once.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.opts.FailureThreshold {
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.lastTrip = b.now()
	b.failures = 0
	logrus.WithField("service", b.service).Warn("Circuit breaker tripped")
	if b.opts.OnTrip != nil {
		b.opts.OnTrip(b.service)
	}
}

// GetState returns the current state.
func (b *Breaker) GetState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker closed and clears counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
