package memory

import (
	"context"
	"sync"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// DecisionLogStore is an in-memory implementation of storage.DecisionLogStore.
type DecisionLogStore struct {
	mu   sync.Mutex
	rows []*domain.Decision
}

// NewDecisionLogStore creates a new in-memory decision log.
func NewDecisionLogStore() *DecisionLogStore {
	return &DecisionLogStore{}
}

// Append records a decision outcome.
func (s *DecisionLogStore) Append(_ context.Context, d *domain.Decision) error {
	if d == nil || d.Identity == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *d
	s.rows = append(s.rows, &cp)
	return nil
}

// All returns a snapshot of appended decisions, in append order.
func (s *DecisionLogStore) All() []*domain.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Decision, len(s.rows))
	copy(out, s.rows)
	return out
}

// Verify interface compliance at compile time.
var _ storage.DecisionLogStore = (*DecisionLogStore)(nil)
