package storage

import (
	"context"

	"solana-sniper/internal/domain"
)

// WalletStore provides access to encrypted key material.
// Key material is append-only; rotation inserts a new record.
type WalletStore interface {
	// Insert adds key material. Returns ErrDuplicateKey if the user already
	// has a wallet on record.
	Insert(ctx context.Context, m *domain.EncryptedKeyMaterial) error

	// GetByUserID retrieves key material. Returns ErrNotFound if absent.
	GetByUserID(ctx context.Context, userID string) (*domain.EncryptedKeyMaterial, error)
}

// IntentLedgerStore durably records completed execution results per intent
// key, so a restarted process still answers duplicates with the prior result.
type IntentLedgerStore interface {
	// Insert records a completed result. Returns ErrDuplicateKey if the
	// intent key is already recorded.
	Insert(ctx context.Context, res *domain.ExecutionResult) error

	// GetByKey retrieves the result for an intent key. Returns ErrNotFound
	// if the key was never completed.
	GetByKey(ctx context.Context, intentKey string) (*domain.ExecutionResult, error)
}

// DecisionLogStore appends decision outcomes for offline analysis.
// Append-only; no reads on the hot path.
type DecisionLogStore interface {
	Append(ctx context.Context, d *domain.Decision) error
}
