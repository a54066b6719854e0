package broadcast

import (
	"sync"
	"time"

	"solana-sniper/internal/domain"
)

// ledgerRetention is how long a resolved entry stays in the in-process
// table. Duplicates within an idempotency bucket arrive well inside this
// window; anything later replays from the durable ledger.
const ledgerRetention = 10 * time.Minute

// ledger is the in-process exactly-once table keyed by intent key.
// begin is a single atomic check-and-set: exactly one caller per key wins
// the right to execute; everyone else observes the in-flight entry and waits
// on its done channel. Resolved entries are swept after the retention window
// so the table does not grow with every intent key ever seen.
type ledger struct {
	mu        sync.Mutex
	entries   map[string]*ledgerEntry
	lastSweep time.Time
	now       func() time.Time
}

type ledgerEntry struct {
	done       chan struct{}           // closed once result is set
	result     *domain.ExecutionResult // immutable after done closes
	resolvedAt time.Time               // zero while the race is in flight
}

func newLedger() *ledger {
	l := &ledger{
		entries: make(map[string]*ledgerEntry),
		now:     time.Now,
	}
	l.lastSweep = l.now()
	return l
}

// begin claims the key. won=true means the caller must execute and later
// call complete exactly once.
func (l *ledger) begin(key string) (entry *ledgerEntry, won bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep()

	if e, exists := l.entries[key]; exists {
		return e, false
	}
	e := &ledgerEntry{done: make(chan struct{})}
	l.entries[key] = e
	return e, true
}

// complete records the result and releases waiters.
func (l *ledger) complete(key string, res *domain.ExecutionResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	if e == nil {
		return
	}
	e.result = res
	e.resolvedAt = l.now()
	close(e.done)
}

// sweep drops resolved entries older than the retention window. In-flight
// entries are never dropped, and waiters already hold their entry pointer;
// eviction only frees the key. Caller must hold mu.
func (l *ledger) sweep() {
	now := l.now()
	if now.Sub(l.lastSweep) < ledgerRetention {
		return
	}
	l.lastSweep = now

	for key, e := range l.entries {
		if !e.resolvedAt.IsZero() && now.Sub(e.resolvedAt) >= ledgerRetention {
			delete(l.entries, key)
		}
	}
}
