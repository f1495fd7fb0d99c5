package cache

import (
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()

	if _, ok := m.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	m.Set("a", []byte("one"), time.Minute)
	got, ok := m.Get("a")
	if !ok || string(got) != "one" {
		t.Fatalf("Get(a) = %q, %v; want %q, true", got, ok, "one")
	}

	m.Set("a", []byte("two"), time.Minute)
	got, _ = m.Get("a")
	if string(got) != "two" {
		t.Fatalf("overwrite: got %q, want %q", got, "two")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()

	m.Set("short", []byte("x"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := m.Get("short"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()

	m.Set("a", []byte("one"), time.Minute)
	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()

	m.Set("old", []byte("x"), 5*time.Millisecond)
	m.Set("new", []byte("y"), time.Minute)
	time.Sleep(20 * time.Millisecond)
	m.cleanup()

	m.mu.RLock()
	_, oldThere := m.entries["old"]
	_, newThere := m.entries["new"]
	m.mu.RUnlock()

	if oldThere {
		t.Error("cleanup kept expired entry")
	}
	if !newThere {
		t.Error("cleanup dropped live entry")
	}
}
