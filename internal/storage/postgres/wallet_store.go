package postgres

import (
	"context"
	"fmt"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds key material. Returns ErrDuplicateKey if user_id exists.
func (s *WalletStore) Insert(ctx context.Context, m *domain.EncryptedKeyMaterial) error {
	query := `
		INSERT INTO wallets (
			user_id, public_key, ciphertext, nonce,
			kdf_salt, kdf_time, kdf_memory_kib, kdf_threads, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		m.UserID,
		m.PublicKey,
		m.Ciphertext,
		m.Nonce,
		m.KDF.Salt,
		int64(m.KDF.Time),
		int64(m.KDF.MemoryKiB),
		int16(m.KDF.Threads),
		m.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByUserID retrieves key material. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByUserID(ctx context.Context, userID string) (*domain.EncryptedKeyMaterial, error) {
	query := `
		SELECT user_id, public_key, ciphertext, nonce,
		       kdf_salt, kdf_time, kdf_memory_kib, kdf_threads, created_at
		FROM wallets
		WHERE user_id = $1
	`

	var (
		m         domain.EncryptedKeyMaterial
		kdfTime   int64
		kdfMemory int64
		threads   int16
	)
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&m.UserID,
		&m.PublicKey,
		&m.Ciphertext,
		&m.Nonce,
		&m.KDF.Salt,
		&kdfTime,
		&kdfMemory,
		&threads,
		&m.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet by user id: %w", err)
	}
	m.KDF.Time = uint32(kdfTime)
	m.KDF.MemoryKiB = uint32(kdfMemory)
	m.KDF.Threads = uint8(threads)
	return &m, nil
}
