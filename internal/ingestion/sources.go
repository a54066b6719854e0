package ingestion

import (
	"context"

	"solana-sniper/internal/domain"
)

// CandidateSource streams candidate observations from an external transport.
// Events may arrive for new identities or as re-observations of known ones;
// the manager assigns sequence numbers and enriches market attributes.
type CandidateSource interface {
	// Run delivers candidates to emit until ctx is cancelled or the
	// underlying transport fails terminally.
	Run(ctx context.Context, emit func(*domain.Candidate)) error
}

// MarketDataSource supplies current market attributes for a token.
// Implementations wrap external data providers; the core only consumes
// the snapshot.
type MarketDataSource interface {
	Snapshot(ctx context.Context, mint, creator string) (domain.MarketSnapshot, error)
}
