package custody

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// Vault performs scoped decrypt-sign-discard operations against stored key
// material. Each Sign call decrypts into its own buffer and zeroes it on
// every exit path; plaintext is never shared across concurrent signings or
// left resident between attempts.
type Vault struct {
	master  *MasterKey
	wallets storage.WalletStore
}

// NewVault creates a vault. master must come from LoadMasterKey so a
// misconfigured process fails before it can sign anything.
func NewVault(master *MasterKey, wallets storage.WalletStore) (*Vault, error) {
	if master == nil {
		return nil, ErrMasterKeyUnavailable
	}
	return &Vault{master: master, wallets: wallets}, nil
}

// Sign decrypts the user's private key, validates it against the recorded
// public key, signs the payload, and discards the plaintext.
func (v *Vault) Sign(ctx context.Context, userID string, payload []byte) (*domain.SignedTransaction, error) {
	material, err := v.wallets.GetByUserID(ctx, userID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", ErrMissingWallet, userID)
		}
		return nil, fmt.Errorf("custody: load wallet %s: %w", userID, err)
	}

	priv, err := decrypt(v.master, material)
	if err != nil {
		return nil, err
	}
	defer Zero(priv)

	pub := priv.Public().(ed25519.PublicKey)
	if encodePublicKey(pub) != material.PublicKey {
		return nil, ErrKeyMismatch
	}
	if err := validatePublicKey(pub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}

	sig := ed25519.Sign(priv, payload)

	return &domain.SignedTransaction{
		Payload:   payload,
		Signature: sig,
		PublicKey: material.PublicKey,
	}, nil
}

// encodePublicKey returns the base58 wallet address for a public key.
func encodePublicKey(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}

// validatePublicKey checks the key is a valid edwards25519 curve point.
func validatePublicKey(pub ed25519.PublicKey) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return fmt.Errorf("not a curve point: %w", err)
	}
	return nil
}

// DecodePrivateKey parses a base58-encoded 64-byte ed25519 private key, the
// format wallet apps export. Used at provisioning time only.
func DecodePrivateKey(encoded string) (ed25519.PrivateKey, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("custody: decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		Zero(raw)
		return nil, fmt.Errorf("custody: private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return ed25519.PrivateKey(raw), nil
}
