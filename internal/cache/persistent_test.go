package cache

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/monokaijs/feed-watcher-ui/internal/database"
)

func newTestStore(t *testing.T) (*sqliteStore, *database.Manager) {
	t.Helper()
	manager, err := database.NewManager(database.Config{
		Path: filepath.Join(t.TempDir(), "cache.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { manager.Close() })
	return NewSQLiteStore(manager.GetDB()).(*sqliteStore), manager
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	store.Set("api:/repos/a/b/contents/posts", []byte("payload"), time.Hour, `"v1"`)

	entry := store.Get("api:/repos/a/b/contents/posts")
	if entry == nil {
		t.Fatal("expected entry")
	}
	if string(entry.Data) != "payload" || entry.ETag != `"v1"` {
		t.Fatalf("entry = %+v", entry)
	}
	if !entry.ExpiresAt.After(time.Now()) {
		t.Error("expiresAt not in the future")
	}
}

func TestStoreTTLExpiry(t *testing.T) {
	store, manager := newTestStore(t)
	store.Set("k", []byte("v"), 30*time.Millisecond, "")

	if store.Get("k") == nil {
		t.Fatal("entry missing before expiry")
	}

	time.Sleep(60 * time.Millisecond)
	if entry := store.Get("k"); entry != nil {
		t.Fatalf("expired entry returned: %+v", entry)
	}

	// Expired reads delete the row as a side effect.
	var count int
	if err := manager.GetDB().QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expired row still present, count = %d", count)
	}
}

func TestStoreCapacityEviction(t *testing.T) {
	store, _ := newTestStore(t)

	const total = MaxEntries + 5
	for i := 0; i < total; i++ {
		store.Set(fmt.Sprintf("k%03d", i), []byte("v"), time.Hour, "")
	}

	stats := store.Stats()
	if stats.Count != MaxEntries {
		t.Fatalf("count = %d, want %d", stats.Count, MaxEntries)
	}

	// FIFO by write time: the five oldest writes are gone, the newest
	// survive.
	for i := 0; i < total-MaxEntries; i++ {
		if store.Get(fmt.Sprintf("k%03d", i)) != nil {
			t.Errorf("oldest entry k%03d survived eviction", i)
		}
	}
	for i := total - MaxEntries; i < total; i++ {
		if store.Get(fmt.Sprintf("k%03d", i)) == nil {
			t.Errorf("entry k%03d evicted out of order", i)
		}
	}
}

func TestStoreSetEvictsExpiredFirst(t *testing.T) {
	store, _ := newTestStore(t)
	store.Set("dead", []byte("v"), -time.Second, "")
	store.Set("live", []byte("v"), time.Hour, "")

	stats := store.Stats()
	if stats.Count != 1 {
		t.Fatalf("count = %d, want 1 (expired entry purged on set)", stats.Count)
	}
	if stats.Entries[0].Key != "live" {
		t.Errorf("surviving key = %s", stats.Entries[0].Key)
	}
}

func TestStoreCorruptedEntryDeleted(t *testing.T) {
	store, manager := newTestStore(t)
	_, err := manager.GetDB().Exec(
		`INSERT INTO cache_entries (key, data, etag, timestamp, expires_at) VALUES (?, ?, ?, ?, ?)`,
		"feedcache:bad", []byte("x"), "", "garbage", "garbage",
	)
	if err != nil {
		t.Fatal(err)
	}

	if entry := store.Get("bad"); entry != nil {
		t.Fatalf("corrupted entry returned: %+v", entry)
	}
	var count int
	manager.GetDB().QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count)
	if count != 0 {
		t.Errorf("corrupted row not deleted, count = %d", count)
	}
}

func TestStoreDeleteAndClear(t *testing.T) {
	store, _ := newTestStore(t)
	store.Set("a", []byte("1"), time.Hour, "")
	store.Set("b", []byte("2"), time.Hour, "")

	store.Delete("a")
	if store.Get("a") != nil {
		t.Error("deleted entry still readable")
	}
	if store.Get("b") == nil {
		t.Error("unrelated entry removed by delete")
	}

	store.Clear()
	if store.Stats().Count != 0 {
		t.Error("entries survive clear")
	}
}

func TestStoreStats(t *testing.T) {
	store, _ := newTestStore(t)
	store.Set("a", []byte("12345"), time.Hour, `"v1"`)
	store.Set("b", []byte("67890"), time.Hour, "")

	stats := store.Stats()
	if stats.Count != 2 {
		t.Fatalf("count = %d", stats.Count)
	}
	if stats.TotalSize != "10 B" {
		t.Errorf("totalSize = %q, want \"10 B\"", stats.TotalSize)
	}
	etags := 0
	for _, e := range stats.Entries {
		if e.HasETag {
			etags++
		}
		if e.Age < 0 {
			t.Errorf("entry %s has negative age", e.Key)
		}
	}
	if etags != 1 {
		t.Errorf("%d entries report an etag, want 1", etags)
	}
}

func TestStoreDegradesWithoutDatabase(t *testing.T) {
	store := NewSQLiteStore(nil)

	// Every operation must be a no-op, never a panic or an error.
	store.Set("k", []byte("v"), time.Hour, "")
	if store.Get("k") != nil {
		t.Error("nil-db store returned an entry")
	}
	store.Delete("k")
	store.Clear()
	if stats := store.Stats(); stats.Count != 0 {
		t.Errorf("stats = %+v", stats)
	}
}
