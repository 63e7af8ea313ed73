// Package ratelimit gates entry to the analysis workflow with a fixed
// per-client request budget over a rolling window. Exceeding the budget fails
// fast before any adapter is invoked.
package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter tracks request timestamps per client key over a rolling window.
// It is safe for concurrent use. Like the in-memory cache, it is correct for
// single-instance deployments only.
type Limiter struct {
	budget int
	window time.Duration

	mu        sync.Mutex
	history   map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// New creates a Limiter allowing budget requests per window per client.
func New(budget int, window time.Duration) *Limiter {
	return &Limiter{
		budget:  budget,
		window:  window,
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records a request for key and reports whether it fits the budget.
// Denied requests are not recorded and do not consume budget.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff)

	recent := l.history[key][:0]
	for _, t := range l.history[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.budget {
		l.history[key] = recent
		return false
	}

	l.history[key] = append(recent, now)
	return true
}

// sweep drops idle keys at most once per window. Client keys come from
// attacker-controlled proxy headers, so the map must not grow with every
// distinct key ever seen.
func (l *Limiter) sweep(now, cutoff time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now

	for key, stamps := range l.history {
		live := stamps[:0]
		for _, t := range stamps {
			if t.After(cutoff) {
				live = append(live, t)
			}
		}
		if len(live) == 0 {
			delete(l.history, key)
		} else {
			l.history[key] = live
		}
	}
}

// ClientKey derives the rate-limit key from proxy headers, falling back to
// "unknown" when no client IP can be determined.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("x-forwarded-for"); fwd != "" {
		// First hop is the originating client.
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("x-real-ip"); real != "" {
		return strings.TrimSpace(real)
	}
	return "unknown"
}
