package domain

// Candidate represents a discovered launch opportunity under evaluation.
// Identity (Mint + Creator) is immutable; Market is refreshed on re-observation.
type Candidate struct {
	Mint         string  // token mint address
	Creator      string  // creator wallet address
	Pool         *string // pool address (nullable, unknown pre-migration)
	TxSignature  string  // discovery transaction signature
	Slot         int64   // Solana slot number
	DiscoveredAt int64   // Unix timestamp in milliseconds
	Seq          uint64  // monotonically increasing observation sequence
	Market       MarketSnapshot
}

// MarketSnapshot holds the mutable market attributes of a candidate
// at one observation. Values come from external data feeds.
type MarketSnapshot struct {
	LiquiditySOL     float64 // pool liquidity in SOL
	PriceSOL         float64 // last trade price in SOL
	HolderCount      int     // distinct holder count
	TopHolderPct     float64 // largest holder share, 0..100
	DevHoldingPct    float64 // creator's own holding share, 0..100
	CurveProgressPct float64 // bonding curve progress, 0..100
	VolumeSOL        float64 // volume over the observation window
	BuyCount         int     // buys over the observation window
	SellCount        int     // sells over the observation window
	CreatorVerified  bool    // creator passed external verification
	ObservedAt       int64   // Unix timestamp in milliseconds
}

// Identity returns the cache/dedup key for this candidate.
// Two observations of the same token by the same creator share an identity.
func (c *Candidate) Identity() string {
	return c.Mint + "|" + c.Creator
}

// AgeMs returns candidate age at the given time in milliseconds.
func (c *Candidate) AgeMs(nowMs int64) int64 {
	return nowMs - c.DiscoveredAt
}
