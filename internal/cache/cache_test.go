package cache

import (
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()

	s.Set("a", 1, time.Minute)
	v, ok := s.Get("a")
	if !ok || v.(int) != 1 {
		t.Fatalf("Get(a) = (%v, %v), want (1, true)", v, ok)
	}

	if _, ok := s.Get("missing"); ok {
		t.Fatal("Get on a missing key should report absent")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	s := NewMemoryStore()
	s.now = func() time.Time { return current }

	s.Set("a", "value", 30*time.Second)

	current = current.Add(29 * time.Second)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("entry should be live one second before its TTL")
	}

	current = current.Add(2 * time.Second)
	if _, ok := s.Get("a"); ok {
		t.Fatal("entry should expire after its TTL")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read, Len() = %d", s.Len())
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore()

	s.Set("a", 1, time.Minute)
	s.Set("a", 2, time.Minute)
	v, _ := s.Get("a")
	if v.(int) != 2 {
		t.Fatalf("Get(a) = %v after overwrite, want 2", v)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()

	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)
	s.Delete("a")

	if _, ok := s.Get("a"); ok {
		t.Fatal("deleted key should be absent")
	}
	if _, ok := s.Get("b"); !ok {
		t.Fatal("unrelated key should survive a delete")
	}
}
