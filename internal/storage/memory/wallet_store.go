// Package memory provides in-memory store implementations for tests and
// single-process development runs.
package memory

import (
	"context"
	"sync"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu   sync.RWMutex
	data map[string]*domain.EncryptedKeyMaterial // keyed by user_id
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		data: make(map[string]*domain.EncryptedKeyMaterial),
	}
}

// Insert adds key material. Returns ErrDuplicateKey if the user already has
// a wallet on record.
func (s *WalletStore) Insert(_ context.Context, m *domain.EncryptedKeyMaterial) error {
	if m == nil || m.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[m.UserID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	cp := copyKeyMaterial(m)
	s.data[m.UserID] = cp
	return nil
}

// GetByUserID retrieves key material. Returns ErrNotFound if absent.
func (s *WalletStore) GetByUserID(_ context.Context, userID string) (*domain.EncryptedKeyMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.data[userID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyKeyMaterial(m), nil
}

func copyKeyMaterial(m *domain.EncryptedKeyMaterial) *domain.EncryptedKeyMaterial {
	cp := *m
	cp.Ciphertext = append([]byte(nil), m.Ciphertext...)
	cp.Nonce = append([]byte(nil), m.Nonce...)
	cp.KDF.Salt = append([]byte(nil), m.KDF.Salt...)
	return &cp
}

// Verify interface compliance at compile time.
var _ storage.WalletStore = (*WalletStore)(nil)
