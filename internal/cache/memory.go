package cache

import (
	"sync"
	"time"
)

// Entry is one immutable memory-cache record. A refresh replaces the entry;
// nothing merges in place.
type Entry struct {
	Data      []byte
	Timestamp time.Time
	ETag      string
}

// EntryInfo is a diagnostic view of one memory entry.
type EntryInfo struct {
	Key     string        `json:"key"`
	Age     time.Duration `json:"age"`
	HasETag bool          `json:"has_etag"`
}

// Memory is the in-process cache tier, keyed by full request URL. Freshness
// is supplied per call; the tier itself stores no TTL.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

// Get returns the entry for key if its age is within maxAge.
func (m *Memory) Get(key string, maxAge time.Duration) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok || time.Since(entry.Timestamp) >= maxAge {
		return Entry{}, false
	}
	return entry, true
}

// Peek returns the entry for key regardless of age. Callers use it for ETag
// replay and stale fallback.
func (m *Memory) Peek(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	return entry, ok
}

func (m *Memory) Set(key string, data []byte, etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{Data: data, Timestamp: time.Now(), ETag: etag}
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
}

// ClearOlderThan drops entries older than maxAge. It is a coarse backstop on
// top of the per-request freshness checks.
func (m *Memory) ClearOlderThan(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.entries {
		if time.Since(entry.Timestamp) > maxAge {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Info returns a diagnostic snapshot of every entry.
func (m *Memory) Info() []EntryInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info := make([]EntryInfo, 0, len(m.entries))
	for key, entry := range m.entries {
		info = append(info, EntryInfo{
			Key:     key,
			Age:     time.Since(entry.Timestamp),
			HasETag: entry.ETag != "",
		})
	}
	return info
}
