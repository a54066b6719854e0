package memory

import (
	"context"
	"sync"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// IntentLedgerStore is an in-memory implementation of storage.IntentLedgerStore.
type IntentLedgerStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ExecutionResult // keyed by intent_key
}

// NewIntentLedgerStore creates a new in-memory intent ledger store.
func NewIntentLedgerStore() *IntentLedgerStore {
	return &IntentLedgerStore{
		data: make(map[string]*domain.ExecutionResult),
	}
}

// Insert records a completed result. Returns ErrDuplicateKey if the intent
// key is already recorded.
func (s *IntentLedgerStore) Insert(_ context.Context, res *domain.ExecutionResult) error {
	if res == nil || res.IntentKey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[res.IntentKey]; exists {
		return storage.ErrDuplicateKey
	}

	cp := copyResult(res)
	s.data[res.IntentKey] = cp
	return nil
}

// GetByKey retrieves the result for an intent key. Returns ErrNotFound if
// the key was never completed.
func (s *IntentLedgerStore) GetByKey(_ context.Context, intentKey string) (*domain.ExecutionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, exists := s.data[intentKey]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyResult(res), nil
}

func copyResult(res *domain.ExecutionResult) *domain.ExecutionResult {
	cp := *res
	cp.Attempts = append([]domain.BroadcastAttempt(nil), res.Attempts...)
	return &cp
}

// Verify interface compliance at compile time.
var _ storage.IntentLedgerStore = (*IntentLedgerStore)(nil)
