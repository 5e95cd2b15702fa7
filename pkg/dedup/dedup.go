// Package dedup provides a TTL-bounded set of recently seen keys. It backs
// both duplicate suppression on the telemetry ingest path and rate limiting
// of repeated alert notifications.
package dedup

import (
	"sync"
	"time"
)

type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
	now  func() time.Time
}

func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, seen: make(map[string]time.Time, 64), now: time.Now}
}

// ShouldProcess reports whether key has not been seen within the TTL, and
// records it. An empty key is never deduplicated.
func (d *Deduper) ShouldProcess(key string) bool {
	if key == "" {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if exp, ok := d.seen[key]; ok && now.Before(exp) {
		return false
	}
	d.seen[key] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		d.sweep(now)
	}
	return true
}

// Forget drops a key so the next ShouldProcess for it returns true.
func (d *Deduper) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

// sweep removes expired entries; if everything is still live the oldest
// entries go first so the map stays bounded.
func (d *Deduper) sweep(now time.Time) {
	for k, exp := range d.seen {
		if now.After(exp) {
			delete(d.seen, k)
		}
	}
	for k := range d.seen {
		if len(d.seen) <= d.max {
			break
		}
		delete(d.seen, k)
	}
}
