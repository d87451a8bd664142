// Package cache implements the expiring message cache the node runtime
// uses for duplicate suppression: an id seen once is remembered, together
// with the value it was admitted with, for a fixed retention window and
// then forgotten, so the epidemic forward loop can tell a first-seen
// envelope from a retransmit without growing without bound.
//
// The implementation shards entries across a fixed set of locks keyed by
// an xxhash of the id, to keep concurrent admission cheap, and expires
// entries with a per-second expiration bucket swept by a background
// ticker rather than scanning the whole map on every tick.
package cache

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 32

type entry[T any] struct {
	value     T
	expiresAt int64 // unix nanoseconds
}

type shard[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	buckets map[int64][]string
}

func newShard[T any]() *shard[T] {
	return &shard[T]{
		entries: make(map[string]entry[T]),
		buckets: make(map[int64][]string),
	}
}

// Cache is a sharded, TTL-expiring map keyed by message id.  All methods
// are safe for concurrent use.  Expiry is lazy: contains/lookup never
// observe an entry at or after its expiresAt, whether or not a sweep has
// run yet.
type Cache[T any] struct {
	shards []*shard[T]
	ttl    time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New returns a Cache that retains each entry for ttl after admission.
// ttl must be positive; the caller is expected to reject a zero or
// negative TTL before construction.
func New[T any](ttl time.Duration) *Cache[T] {
	c := &Cache[T]{
		shards: make([]*shard[T], shardCount),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
	for i := range c.shards {
		c.shards[i] = newShard[T]()
	}
	return c
}

func (c *Cache[T]) shardFor(id string) *shard[T] {
	h := xxhash.Sum64String(id)
	return c.shards[h%uint64(len(c.shards))]
}

func liveAt(exp, now int64) bool { return exp > now }

// TryAdmit installs value under id if, and only if, no live entry already
// exists for id.  It reports whether the install happened.  This is the
// cache's compare-and-set: the check and the insert happen under the same
// shard lock, so two concurrent callers can never both believe they
// admitted the same id.
func (c *Cache[T]) TryAdmit(id string, value T) bool {
	s := c.shardFor(id)
	now := time.Now().UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok && liveAt(e.expiresAt, now) {
		return false
	}

	exp := now + int64(c.ttl)
	s.entries[id] = entry[T]{value: value, expiresAt: exp}
	// Bucket by the first whole second at or after expiry.
	sec := (exp + int64(time.Second) - 1) / int64(time.Second)
	s.buckets[sec] = append(s.buckets[sec], id)
	return true
}

// Contains reports whether id has a live, unexpired entry.
func (c *Cache[T]) Contains(id string) bool {
	s := c.shardFor(id)
	now := time.Now().UnixNano()

	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return ok && liveAt(e.expiresAt, now)
}

// Lookup returns the value admitted under id, if it has a live entry.
func (c *Cache[T]) Lookup(id string) (T, bool) {
	s := c.shardFor(id)
	now := time.Now().UnixNano()

	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || !liveAt(e.expiresAt, now) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Size returns the number of live entries across all shards.  Entries
// awaiting sweep past their expiration are not counted.
func (c *Cache[T]) Size() int {
	now := time.Now().UnixNano()
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		for _, e := range s.entries {
			if liveAt(e.expiresAt, now) {
				total++
			}
		}
		s.mu.RUnlock()
	}
	return total
}

// gc drops entries whose expiration has passed.  Each shard tracks the
// last second it swept and walks forward one second at a time to the
// current second, touching only the buckets that expired in between.
func (s *shard[T]) gc(lastCheck, now int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := lastCheck + 1; t <= now; t++ {
		ids, ok := s.buckets[t]
		if !ok {
			continue
		}
		for _, id := range ids {
			if e, ok := s.entries[id]; ok && e.expiresAt <= now*int64(time.Second) {
				delete(s.entries, id)
			}
		}
		delete(s.buckets, t)
	}
}

// StartGC runs a periodic sweep of expired entries until Stop is called.
// Correctness never depends on this running; it only bounds memory (spec
// section 4.5). It is meant to run in its own goroutine for the lifetime
// of the owning node.
func (c *Cache[T]) StartGC(interval time.Duration) {
	lastCheck := make([]int64, len(c.shards))
	now0 := time.Now().Unix()
	for i := range lastCheck {
		lastCheck[i] = now0
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now().Unix()
			for i, s := range c.shards {
				s.gc(lastCheck[i], now)
				lastCheck[i] = now
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop terminates any running StartGC loop.  It is idempotent.
func (c *Cache[T]) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
