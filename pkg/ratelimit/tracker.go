package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Tracker keeps an adapter-local view of a remote API's rate-limit budget,
// fed from X-RateLimit-* response headers. Each adapter instance owns its
// own tracker; there is no process-global budget.
type Tracker struct {
	mu        sync.Mutex
	remaining int
	resetAt   time.Time
}

// NewTracker returns a tracker with an unknown budget. Until the first
// update arrives, Allow always permits the call.
func NewTracker() *Tracker {
	return &Tracker{remaining: -1}
}

// Allow reports whether a network call may be attempted. The gate closes
// when the tracked remaining budget is down to the last request and the
// reset time has not passed yet.
func (t *Tracker) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining < 0 {
		return true
	}
	if t.remaining <= 1 && time.Now().Before(t.resetAt) {
		return false
	}
	return true
}

// Update records a new remaining count and reset time.
func (t *Tracker) Update(remaining int, resetAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining = remaining
	t.resetAt = resetAt
}

// UpdateFromHeaders reads X-RateLimit-Remaining and X-RateLimit-Reset
// (seconds since epoch) from an API response. Headers that are absent or
// malformed leave the tracked state unchanged.
func (t *Tracker) UpdateFromHeaders(h http.Header) {
	remainingStr := h.Get("X-RateLimit-Remaining")
	resetStr := h.Get("X-RateLimit-Reset")
	if remainingStr == "" || resetStr == "" {
		return
	}

	remaining, err := strconv.Atoi(remainingStr)
	if err != nil {
		return
	}
	resetEpoch, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		return
	}

	t.Update(remaining, time.Unix(resetEpoch, 0))
}

// Snapshot returns the tracked remaining count and reset time.
func (t *Tracker) Snapshot() (int, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining, t.resetAt
}
