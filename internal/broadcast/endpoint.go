// Package broadcast races a signed transaction across independent submission
// endpoints and consolidates the attempts into one exactly-once result.
package broadcast

import (
	"context"
	"fmt"

	"solana-sniper/internal/domain"
)

// Endpoint is one independent transaction submission path. Implementations
// must honor ctx cancellation and deadlines.
type Endpoint interface {
	// Name identifies the endpoint in attempt logs and metrics.
	Name() string

	// Submit sends the signed transaction and returns the transaction
	// reference reported by the endpoint. A nil error means accepted.
	Submit(ctx context.Context, tx *domain.SignedTransaction) (signature string, err error)
}

// RejectionError marks an endpoint that received and refused the
// transaction, as opposed to a transport fault.
type RejectionError struct {
	Code    int
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("endpoint rejected transaction (%d): %s", e.Code, e.Message)
}
