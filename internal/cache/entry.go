package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached value plus its lifetime.
type Entry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`

	// ExpiresAt is zero for entries that never expire.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func newEntry(key string, data json.RawMessage, now time.Time, ttl time.Duration) *Entry {
	e := &Entry{Key: key, Data: data, CreatedAt: now.UTC()}
	if ttl > 0 {
		e.ExpiresAt = e.CreatedAt.Add(ttl)
	}
	return e
}

// ExpiredAt reports whether the entry is stale at t.
func (e *Entry) ExpiredAt(t time.Time) bool {
	return !e.ExpiresAt.IsZero() && t.After(e.ExpiresAt)
}

// Age returns how long ago the entry was written, relative to t.
func (e *Entry) Age(t time.Time) time.Duration {
	return t.Sub(e.CreatedAt)
}
