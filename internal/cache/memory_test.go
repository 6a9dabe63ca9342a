package cache

import (
	"testing"
	"time"
)

func TestMemoryGetRespectsMaxAge(t *testing.T) {
	m := NewMemory()
	m.Set("k", []byte("v"), `"etag"`)

	if _, ok := m.Get("k", time.Minute); !ok {
		t.Error("fresh entry reported as miss")
	}
	if _, ok := m.Get("k", 0); ok {
		t.Error("zero max age must always miss")
	}
	if _, ok := m.Get("missing", time.Minute); ok {
		t.Error("missing key reported as hit")
	}
}

func TestMemoryPeekIgnoresAge(t *testing.T) {
	m := NewMemory()
	m.Set("k", []byte("v"), "")

	entry, ok := m.Peek("k")
	if !ok || string(entry.Data) != "v" {
		t.Fatalf("peek = %v %v", entry, ok)
	}
}

func TestMemorySetRefreshesTimestamp(t *testing.T) {
	m := NewMemory()
	m.Set("k", []byte("v"), "")

	before, _ := m.Peek("k")
	time.Sleep(5 * time.Millisecond)
	m.Set("k", []byte("v"), "")
	after, _ := m.Peek("k")

	if !after.Timestamp.After(before.Timestamp) {
		t.Error("rewrite did not refresh the timestamp")
	}
}

func TestMemoryClearOlderThan(t *testing.T) {
	m := NewMemory()
	m.Set("old", []byte("1"), "")
	// Backdate the entry past the ceiling.
	m.mu.Lock()
	e := m.entries["old"]
	e.Timestamp = time.Now().Add(-2 * time.Hour)
	m.entries["old"] = e
	m.mu.Unlock()
	m.Set("fresh", []byte("2"), "")

	if removed := m.ClearOlderThan(time.Hour); removed != 1 {
		t.Fatalf("removed %d entries, want 1", removed)
	}
	if _, ok := m.Peek("old"); ok {
		t.Error("stale entry survived")
	}
	if _, ok := m.Peek("fresh"); !ok {
		t.Error("fresh entry evicted")
	}
}

func TestMemoryInfo(t *testing.T) {
	m := NewMemory()
	m.Set("a", []byte("1"), `"e"`)
	m.Set("b", []byte("2"), "")

	info := m.Info()
	if len(info) != 2 {
		t.Fatalf("info has %d entries, want 2", len(info))
	}
	withETag := 0
	for _, e := range info {
		if e.HasETag {
			withETag++
		}
	}
	if withETag != 1 {
		t.Errorf("%d entries report an etag, want 1", withETag)
	}
}
