package domain

// KDFParams are the Argon2id parameters used to derive the wrapping key
// for one wallet. Stored alongside the ciphertext so rotation can change them.
type KDFParams struct {
	Salt      []byte
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// EncryptedKeyMaterial holds a user's AES-256-GCM encrypted ed25519 private
// key. The authentication tag is part of Ciphertext (GCM seal). Plaintext key
// bytes never appear outside a scoped decrypt-sign-discard operation.
type EncryptedKeyMaterial struct {
	UserID     string
	PublicKey  string // base58-encoded ed25519 public key (the wallet address)
	Ciphertext []byte
	Nonce      []byte
	KDF        KDFParams
	CreatedAt  int64 // Unix timestamp in milliseconds
}

// SignedTransaction is a submittable transaction blob: the unsigned payload
// plus the custodial ed25519 signature over it.
type SignedTransaction struct {
	Payload   []byte
	Signature []byte
	PublicKey string // base58-encoded signer public key
}

// Blob returns the wire form submitted to endpoints: signature || payload.
func (t *SignedTransaction) Blob() []byte {
	blob := make([]byte, 0, len(t.Signature)+len(t.Payload))
	blob = append(blob, t.Signature...)
	return append(blob, t.Payload...)
}
