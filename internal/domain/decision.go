package domain

// DecisionTier classifies how a qualified candidate should be handled.
type DecisionTier string

const (
	// TierFast executes immediately with minimal further analysis.
	TierFast DecisionTier = "FAST"
	// TierDeep queues the candidate for additional external data lookups.
	TierDeep DecisionTier = "DEEP"
	// TierReject is terminal for this observation.
	TierReject DecisionTier = "REJECT"
)

// Decision bundles a tier with the evidence that produced it.
type Decision struct {
	Identity  string
	Tier      DecisionTier
	Scoring   *ScoringResult // nil on safety veto or cached rejection
	Veto      *SafetyVerdict // set when the safety gate vetoed
	FromCache bool           // true when served from the speed cache without re-scoring
	Seq       uint64         // observation sequence the decision is based on
	DecidedAt int64          // Unix timestamp in milliseconds
}

// Rejected reports whether the decision is terminal.
func (d *Decision) Rejected() bool {
	return d.Tier == TierReject
}
