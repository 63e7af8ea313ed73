package ratelimit

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowBudget(t *testing.T) {
	l := New(10, time.Minute)

	for i := 0; i < 10; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be within budget", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("11th request within the window should be denied")
	}
}

func TestAllowPerKeyIsolation(t *testing.T) {
	l := New(2, time.Minute)

	l.Allow("1.1.1.1")
	l.Allow("1.1.1.1")
	if l.Allow("1.1.1.1") {
		t.Fatal("first key should be exhausted")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatal("second key should have its own budget")
	}
}

func TestAllowWindowExpiry(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	l := New(2, time.Minute)
	l.now = func() time.Time { return current }

	l.Allow("k")
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("budget exhausted inside the window")
	}

	current = current.Add(61 * time.Second)
	if !l.Allow("k") {
		t.Fatal("budget should reset once the window rolls past")
	}
}

func TestDeniedRequestsDoNotConsumeBudget(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	l := New(2, time.Minute)
	l.now = func() time.Time { return current }

	l.Allow("k")
	l.Allow("k")

	// Hammering while denied must not extend the lockout.
	for i := 0; i < 5; i++ {
		current = current.Add(time.Second)
		l.Allow("k")
	}

	current = current.Add(56 * time.Second)
	if !l.Allow("k") {
		t.Fatal("denied requests must not be recorded against the budget")
	}
}

func TestSweepDropsIdleKeys(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	l := New(2, time.Minute)
	l.now = func() time.Time { return current }

	// Many distinct keys, as a spoofed x-forwarded-for would produce.
	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("10.0.%d.1", i))
		current = current.Add(time.Millisecond)
	}

	current = current.Add(2 * time.Minute)
	l.Allow("10.1.0.1")

	if got := len(l.history); got != 1 {
		t.Fatalf("history holds %d keys after the window rolled, want only the active one", got)
	}
}

func TestSweepKeepsLiveKeys(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	l := New(5, time.Minute)
	l.now = func() time.Time { return current }

	l.Allow("a")
	current = current.Add(59 * time.Second)
	l.Allow("b")

	current = current.Add(2 * time.Second)
	l.Allow("c")

	// "a" is stale by now, "b" is still inside the window.
	if _, ok := l.history["a"]; ok {
		t.Error("stale key should be swept")
	}
	if _, ok := l.history["b"]; !ok {
		t.Error("key with live timestamps must survive the sweep")
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded single", map[string]string{"x-forwarded-for": "10.0.0.1"}, "10.0.0.1"},
		{"forwarded chain keeps first hop", map[string]string{"x-forwarded-for": "10.0.0.1, 172.16.0.1, 192.168.0.1"}, "10.0.0.1"},
		{"real ip fallback", map[string]string{"x-real-ip": "10.0.0.2"}, "10.0.0.2"},
		{"forwarded wins over real ip", map[string]string{"x-forwarded-for": "10.0.0.1", "x-real-ip": "10.0.0.2"}, "10.0.0.1"},
		{"no headers", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/analyze/bridge", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientKey(r); got != tt.want {
				t.Errorf("ClientKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
