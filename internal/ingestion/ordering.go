package ingestion

import (
	"sort"
	"sync"

	"solana-sniper/internal/domain"
)

// SortCandidates orders observations by (slot ASC, tx_signature ASC, seq ASC).
// This provides deterministic ordering based on blockchain order for replays.
func SortCandidates(candidates []*domain.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return compareCandidates(candidates[i], candidates[j]) < 0
	})
}

// compareCandidates returns negative if a < b, zero if equal, positive if a > b.
// Order: (slot ASC, tx_signature ASC, seq ASC)
func compareCandidates(a, b *domain.Candidate) int {
	if a.Slot != b.Slot {
		if a.Slot < b.Slot {
			return -1
		}
		return 1
	}
	if a.TxSignature != b.TxSignature {
		if a.TxSignature < b.TxSignature {
			return -1
		}
		return 1
	}
	switch {
	case a.Seq < b.Seq:
		return -1
	case a.Seq > b.Seq:
		return 1
	default:
		return 0
	}
}

// Sequencer assigns monotonically increasing observation sequence numbers
// per candidate identity. The speed cache relies on these to never regress
// to stale observations.
type Sequencer struct {
	mu   sync.Mutex
	last map[string]uint64
}

// NewSequencer creates a sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{last: make(map[string]uint64)}
}

// Next returns the next sequence number for the identity, starting at 1.
func (s *Sequencer) Next(identity string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last[identity]++
	return s.last[identity]
}
