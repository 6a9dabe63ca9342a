package cache

import (
	"database/sql"
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// keyPrefix namespaces this store's rows inside the shared database.
	keyPrefix = "feedcache:"

	// MaxEntries is the soft capacity bound. Writes past it evict the
	// oldest-by-write-time entries (FIFO, not LRU) back down to the cap.
	MaxEntries = 50
)

// PersistentEntry is one durable cache record. Data is the serialized
// payload; an entry is valid only while ExpiresAt is in the future.
type PersistentEntry struct {
	Data      []byte
	Timestamp time.Time
	ETag      string
	ExpiresAt time.Time
}

// StoreStats is the diagnostic report of the persistent tier.
type StoreStats struct {
	Count     int
	TotalSize string
	Entries   []EntryInfo
}

// PersistentStore is the durable cache tier shared by remote adapters. No
// method may propagate a failure: storage trouble degrades every operation
// to a miss or a no-op, because this is a cache, not a source of truth.
type PersistentStore interface {
	Set(key string, data []byte, ttl time.Duration, etag string)
	Get(key string) *PersistentEntry
	Delete(key string)
	Clear()
	Stats() StoreStats
}

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps db as the persistent tier. A nil db yields a store
// whose operations are all no-ops, mirroring an execution context without
// durable storage.
func NewSQLiteStore(db *sql.DB) PersistentStore {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Set(key string, data []byte, ttl time.Duration, etag string) {
	if s.db == nil {
		return
	}

	now := time.Now()
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (key, data, etag, timestamp, expires_at) VALUES (?, ?, ?, ?, ?)`,
		keyPrefix+key, data, etag, now.UnixNano(), now.Add(ttl).UnixNano(),
	)
	if err != nil {
		log.Printf("cache: write failed for %q, evicting oldest half: %v", key, err)
		s.evictOldest(s.validCount() / 2)
		return
	}

	s.cleanup()
}

func (s *sqliteStore) Get(key string) *PersistentEntry {
	if s.db == nil {
		return nil
	}

	row := s.db.QueryRow(
		`SELECT data, etag, timestamp, expires_at FROM cache_entries WHERE key = ?`,
		keyPrefix+key,
	)

	var data []byte
	var etag string
	var timestamp, expiresAt int64
	if err := row.Scan(&data, &etag, &timestamp, &expiresAt); err != nil {
		if err != sql.ErrNoRows {
			// Corrupted row; drop it so it cannot shadow fresh writes.
			log.Printf("cache: dropping unreadable entry %q: %v", key, err)
			s.Delete(key)
		}
		return nil
	}

	entry := &PersistentEntry{
		Data:      data,
		Timestamp: time.Unix(0, timestamp),
		ETag:      etag,
		ExpiresAt: time.Unix(0, expiresAt),
	}
	if time.Now().After(entry.ExpiresAt) {
		s.Delete(key)
		return nil
	}
	return entry
}

func (s *sqliteStore) Delete(key string) {
	if s.db == nil {
		return
	}
	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, keyPrefix+key); err != nil {
		log.Printf("cache: delete failed for %q: %v", key, err)
	}
}

func (s *sqliteStore) Clear() {
	if s.db == nil {
		return
	}
	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key LIKE ?`, keyPrefix+"%"); err != nil {
		log.Printf("cache: clear failed: %v", err)
	}
}

// cleanup purges expired entries and enforces the capacity bound. Runs on
// every Set.
func (s *sqliteStore) cleanup() {
	now := time.Now().UnixNano()
	if _, err := s.db.Exec(
		`DELETE FROM cache_entries WHERE key LIKE ? AND expires_at <= ?`,
		keyPrefix+"%", now,
	); err != nil {
		log.Printf("cache: expiry sweep failed: %v", err)
		return
	}

	if excess := s.validCount() - MaxEntries; excess > 0 {
		s.evictOldest(excess)
	}
}

func (s *sqliteStore) validCount() int {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM cache_entries WHERE key LIKE ? AND expires_at > ?`,
		keyPrefix+"%", time.Now().UnixNano(),
	).Scan(&count)
	if err != nil {
		return 0
	}
	return count
}

// evictOldest removes n entries ordered by write time, oldest first.
func (s *sqliteStore) evictOldest(n int) {
	if n <= 0 {
		return
	}
	_, err := s.db.Exec(
		`DELETE FROM cache_entries WHERE key IN (
			SELECT key FROM cache_entries WHERE key LIKE ?
			ORDER BY timestamp ASC, key ASC LIMIT ?
		)`,
		keyPrefix+"%", n,
	)
	if err != nil {
		log.Printf("cache: eviction failed: %v", err)
	}
}

func (s *sqliteStore) Stats() StoreStats {
	if s.db == nil {
		return StoreStats{TotalSize: humanize.Bytes(0)}
	}

	rows, err := s.db.Query(
		`SELECT key, etag, timestamp, LENGTH(data) FROM cache_entries WHERE key LIKE ? ORDER BY timestamp DESC`,
		keyPrefix+"%",
	)
	if err != nil {
		log.Printf("cache: stats query failed: %v", err)
		return StoreStats{TotalSize: humanize.Bytes(0)}
	}
	defer rows.Close()

	var stats StoreStats
	var totalBytes uint64
	for rows.Next() {
		var key, etag string
		var timestamp, size int64
		if err := rows.Scan(&key, &etag, &timestamp, &size); err != nil {
			continue
		}
		totalBytes += uint64(size)
		stats.Entries = append(stats.Entries, EntryInfo{
			Key:     key[len(keyPrefix):],
			Age:     time.Since(time.Unix(0, timestamp)),
			HasETag: etag != "",
		})
	}
	stats.Count = len(stats.Entries)
	stats.TotalSize = humanize.Bytes(totalBytes)
	return stats
}
