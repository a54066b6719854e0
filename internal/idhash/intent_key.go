// Package idhash derives deterministic identifiers used for deduplication.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"solana-sniper/internal/domain"
)

// ComputeIntentKey computes a deterministic idempotency key using SHA256.
// Formula: SHA256(mint|creator|tier|action|bucket) with
// bucket = unixMs / bucketWidthMs. Returns hex-encoded hash (64 characters).
//
// Two executions with the same key represent the same logical trade intent.
// The time bucket dedupes within a burst while allowing legitimate re-entry
// after the bucket rolls over.
func ComputeIntentKey(
	mint string,
	creator string,
	tier domain.DecisionTier,
	action domain.TradeAction,
	unixMs int64,
	bucketWidthMs int64,
) string {
	bucket := int64(0)
	if bucketWidthMs > 0 {
		bucket = unixMs / bucketWidthMs
	}

	data := fmt.Sprintf("%s|%s|%s|%s|%d",
		mint,
		creator,
		string(tier),
		string(action),
		bucket,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
