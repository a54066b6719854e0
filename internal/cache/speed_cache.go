// Package cache provides a short-TTL concurrent store memoizing recent
// decisions per candidate identity, so burst re-observations of the same
// token do not trigger redundant scoring.
package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"solana-sniper/internal/domain"
)

// DefaultShardCount is used when the configured shard count is not positive.
const DefaultShardCount = 32

// Entry is one memoized decision for a candidate identity.
type Entry struct {
	Identity string
	Tier     domain.DecisionTier
	Scoring  *domain.ScoringResult // nil for veto/cached rejections
	Seq      uint64                // observation sequence the entry is based on
	StoredAt time.Time
}

// Cache is a sharded TTL key/value store. Writes to the same identity
// serialize on one shard lock; distinct identities on different shards
// proceed concurrently. Expiry is lazy: an entry older than the TTL is
// treated as absent on lookup.
type Cache struct {
	shards []*shard
	ttl    time.Duration
	now    func() time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// New creates a cache with the given TTL and shard count.
func New(ttl time.Duration, shardCount int) *Cache {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{entries: make(map[string]Entry)}
	}
	return &Cache{shards: shards, ttl: ttl, now: time.Now}
}

// shardFor maps an identity to its shard via FNV-1a.
func (c *Cache) shardFor(identity string) *shard {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

func (c *Cache) expired(e Entry, now time.Time) bool {
	return now.Sub(e.StoredAt) > c.ttl
}

// Get returns the live entry for an identity, or ok=false when absent or
// expired. An expired entry is removed on the way out.
func (c *Cache) Get(identity string) (Entry, bool) {
	s := c.shardFor(identity)
	now := c.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[identity]
	if !exists {
		return Entry{}, false
	}
	if c.expired(e, now) {
		delete(s.entries, identity)
		return Entry{}, false
	}
	return e, true
}

// Put stores an entry unless a live entry with an equal or greater sequence
// number is already present (never regress to stale data; ties keep the
// existing entry). Returns whether the entry was stored.
func (c *Cache) Put(identity string, e Entry) bool {
	s := c.shardFor(identity)
	now := c.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.put(c, identity, e, now)
}

// put assumes the shard lock is held.
func (s *shard) put(c *Cache, identity string, e Entry, now time.Time) bool {
	if prev, exists := s.entries[identity]; exists && !c.expired(prev, now) {
		if e.Seq <= prev.Seq {
			return false
		}
	}
	e.Identity = identity
	if e.StoredAt.IsZero() {
		e.StoredAt = now
	}
	s.entries[identity] = e
	return true
}

// Update runs fn as one atomic consult-then-write for the identity. fn
// receives the live entry (nil when absent or expired) and returns the entry
// to store, or nil to leave the cache unchanged. The write still respects
// the sequence-number ordering rule. Returns whether a write happened.
//
// fn runs under the shard lock and must not call back into the cache.
func (c *Cache) Update(identity string, fn func(prev *Entry) *Entry) bool {
	s := c.shardFor(identity)
	now := c.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var prev *Entry
	if e, exists := s.entries[identity]; exists {
		if c.expired(e, now) {
			delete(s.entries, identity)
		} else {
			cp := e
			prev = &cp
		}
	}

	next := fn(prev)
	if next == nil {
		return false
	}
	return s.put(c, identity, *next, now)
}

// Len returns the number of entries currently held, including not yet
// swept expired ones.
func (c *Cache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}
