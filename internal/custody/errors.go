package custody

import "errors"

var (
	// ErrMasterKeyUnavailable means the process-wide master key is missing or
	// malformed. Fatal at startup: nothing can be signed without it.
	ErrMasterKeyUnavailable = errors.New("custody: master key unavailable")

	// ErrMissingWallet means no key material is on record for the user.
	ErrMissingWallet = errors.New("custody: no wallet on record for user")

	// ErrCorruptCiphertext means authentication failed on decrypt. Fatal for
	// that wallet; signing must not proceed.
	ErrCorruptCiphertext = errors.New("custody: ciphertext authentication failed")

	// ErrKeyMismatch means decrypted key material does not reproduce the
	// recorded public key. Treated like corruption: no signature is produced.
	ErrKeyMismatch = errors.New("custody: decrypted key does not match recorded public key")
)
