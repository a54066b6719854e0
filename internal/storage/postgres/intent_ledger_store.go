package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// IntentLedgerStore implements storage.IntentLedgerStore using PostgreSQL.
// The intent_key primary key is what makes exactly-once hold across restarts.
type IntentLedgerStore struct {
	pool *Pool
}

// NewIntentLedgerStore creates a new IntentLedgerStore.
func NewIntentLedgerStore(pool *Pool) *IntentLedgerStore {
	return &IntentLedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IntentLedgerStore = (*IntentLedgerStore)(nil)

// Insert records a completed result. Returns ErrDuplicateKey if intent_key exists.
func (s *IntentLedgerStore) Insert(ctx context.Context, res *domain.ExecutionResult) error {
	attempts, err := json.Marshal(res.Attempts)
	if err != nil {
		return fmt.Errorf("marshal attempts: %w", err)
	}

	query := `
		INSERT INTO intent_ledger (
			intent_key, success, signature, winning_endpoint, attempts, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query,
		res.IntentKey,
		res.Success,
		res.Signature,
		res.WinningEndpoint,
		attempts,
		res.CompletedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert intent ledger entry: %w", err)
	}
	return nil
}

// GetByKey retrieves the result for an intent key. Returns ErrNotFound if not exists.
func (s *IntentLedgerStore) GetByKey(ctx context.Context, intentKey string) (*domain.ExecutionResult, error) {
	query := `
		SELECT intent_key, success, signature, winning_endpoint, attempts, completed_at
		FROM intent_ledger
		WHERE intent_key = $1
	`

	var (
		res      domain.ExecutionResult
		attempts []byte
	)
	err := s.pool.QueryRow(ctx, query, intentKey).Scan(
		&res.IntentKey,
		&res.Success,
		&res.Signature,
		&res.WinningEndpoint,
		&attempts,
		&res.CompletedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get intent ledger entry: %w", err)
	}
	if len(attempts) > 0 {
		if err := json.Unmarshal(attempts, &res.Attempts); err != nil {
			return nil, fmt.Errorf("unmarshal attempts: %w", err)
		}
	}
	return &res, nil
}
