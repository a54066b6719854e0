// Package custody holds encrypted private key material and signs transaction
// payloads without exposing plaintext keys outside a scoped operation.
package custody

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"

	"solana-sniper/internal/domain"
)

// MasterKeyEnv is the environment variable carrying the base64-encoded
// 32-byte master key.
const MasterKeyEnv = "SNIPER_MASTER_KEY"

// Argon2id defaults for wrapping-key derivation.
const (
	defaultKDFTime      = 2
	defaultKDFMemoryKiB = 64 * 1024
	defaultKDFThreads   = 2
	saltLen             = 16
	wrapKeyLen          = 32
)

// MasterKey is the process-wide key material decryption root. Initialized
// once at startup; never logged or persisted.
type MasterKey struct {
	key []byte
}

// LoadMasterKey reads and validates the master key from the environment.
// Returns ErrMasterKeyUnavailable when absent or malformed so the process
// can refuse to start a signing path.
func LoadMasterKey() (*MasterKey, error) {
	encoded := os.Getenv(MasterKeyEnv)
	if encoded == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrMasterKeyUnavailable, MasterKeyEnv)
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMasterKeyUnavailable, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: need 32 bytes, got %d", ErrMasterKeyUnavailable, len(key))
	}
	return &MasterKey{key: key}, nil
}

// NewMasterKey wraps raw key bytes. Used by tests and provisioning.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: need 32 bytes, got %d", ErrMasterKeyUnavailable, len(key))
	}
	k := make([]byte, 32)
	copy(k, key)
	return &MasterKey{key: k}, nil
}

// wrapKey derives the per-wallet AES key from the master key and KDF params.
func (m *MasterKey) wrapKey(p domain.KDFParams) []byte {
	return argon2.IDKey(m.key, p.Salt, p.Time, p.MemoryKiB, p.Threads, wrapKeyLen)
}

// Encrypt seals an ed25519 private key for a user under a fresh salt and
// nonce. The caller still owns privateKey and should zero it when done.
func Encrypt(master *MasterKey, userID string, privateKey ed25519.PrivateKey, nowMs int64) (*domain.EncryptedKeyMaterial, error) {
	if master == nil {
		return nil, ErrMasterKeyUnavailable
	}
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("custody: private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(privateKey))
	}

	params := domain.KDFParams{
		Salt:      make([]byte, saltLen),
		Time:      defaultKDFTime,
		MemoryKiB: defaultKDFMemoryKiB,
		Threads:   defaultKDFThreads,
	}
	if _, err := io.ReadFull(rand.Reader, params.Salt); err != nil {
		return nil, fmt.Errorf("custody: generate salt: %w", err)
	}

	wrap := master.wrapKey(params)
	defer Zero(wrap)

	block, err := aes.NewCipher(wrap)
	if err != nil {
		return nil, fmt.Errorf("custody: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("custody: gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("custody: generate nonce: %w", err)
	}

	pub := privateKey.Public().(ed25519.PublicKey)

	return &domain.EncryptedKeyMaterial{
		UserID:     userID,
		PublicKey:  encodePublicKey(pub),
		Ciphertext: gcm.Seal(nil, nonce, privateKey, []byte(userID)),
		Nonce:      nonce,
		KDF:        params,
		CreatedAt:  nowMs,
	}, nil
}

// decrypt opens the sealed key into a fresh buffer. The caller must zero the
// returned bytes on every exit path.
func decrypt(master *MasterKey, m *domain.EncryptedKeyMaterial) (ed25519.PrivateKey, error) {
	wrap := master.wrapKey(m.KDF)
	defer Zero(wrap)

	block, err := aes.NewCipher(wrap)
	if err != nil {
		return nil, fmt.Errorf("custody: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("custody: gcm: %w", err)
	}

	plain, err := gcm.Open(nil, m.Nonce, m.Ciphertext, []byte(m.UserID))
	if err != nil {
		// Authentication tag mismatch: tampered or wrong master key.
		return nil, ErrCorruptCiphertext
	}
	if len(plain) != ed25519.PrivateKeySize {
		Zero(plain)
		return nil, ErrCorruptCiphertext
	}
	return ed25519.PrivateKey(plain), nil
}

// Zero overwrites b in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
