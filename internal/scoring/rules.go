package scoring

import (
	"errors"
	"fmt"

	"solana-sniper/internal/domain"
)

// ErrMissingData is returned by rule funcs when the candidate observation
// lacks the attribute a rule needs. Reported as a fault, not a failed predicate.
var ErrMissingData = errors.New("attribute not present in observation")

// MinLiquidity passes when pool liquidity is at least min SOL.
func MinLiquidity(min float64) RuleFunc {
	return func(c *domain.Candidate) (string, bool, error) {
		if c.Market.LiquiditySOL < 0 {
			return "", false, ErrMissingData
		}
		return fmt.Sprintf("%.2f SOL", c.Market.LiquiditySOL), c.Market.LiquiditySOL >= min, nil
	}
}

// MinHolders passes when the distinct holder count is at least min.
func MinHolders(min int) RuleFunc {
	return func(c *domain.Candidate) (string, bool, error) {
		if c.Market.HolderCount <= 0 {
			return "", false, ErrMissingData
		}
		return fmt.Sprintf("%d holders", c.Market.HolderCount), c.Market.HolderCount >= min, nil
	}
}

// MaxTopHolder passes when the largest holder owns at most maxPct percent.
func MaxTopHolder(maxPct float64) RuleFunc {
	return func(c *domain.Candidate) (string, bool, error) {
		if c.Market.TopHolderPct <= 0 {
			return "", false, ErrMissingData
		}
		return fmt.Sprintf("%.1f%%", c.Market.TopHolderPct), c.Market.TopHolderPct <= maxPct, nil
	}
}

// MaxDevHolding passes when the creator holds at most maxPct percent.
func MaxDevHolding(maxPct float64) RuleFunc {
	return func(c *domain.Candidate) (string, bool, error) {
		if c.Market.DevHoldingPct < 0 {
			return "", false, ErrMissingData
		}
		return fmt.Sprintf("%.1f%%", c.Market.DevHoldingPct), c.Market.DevHoldingPct <= maxPct, nil
	}
}

// CurveProgressWindow passes when bonding curve progress is inside
// [minPct, maxPct]. Too early means no exit liquidity, too late means the
// upside is gone.
func CurveProgressWindow(minPct, maxPct float64) RuleFunc {
	return func(c *domain.Candidate) (string, bool, error) {
		p := c.Market.CurveProgressPct
		if p < 0 || p > 100 {
			return "", false, ErrMissingData
		}
		return fmt.Sprintf("%.1f%%", p), p >= minPct && p <= maxPct, nil
	}
}

// MinVolume passes when windowed volume is at least min SOL.
func MinVolume(min float64) RuleFunc {
	return func(c *domain.Candidate) (string, bool, error) {
		if c.Market.VolumeSOL < 0 {
			return "", false, ErrMissingData
		}
		return fmt.Sprintf("%.2f SOL", c.Market.VolumeSOL), c.Market.VolumeSOL >= min, nil
	}
}

// BuyPressure passes when buys/(buys+sells) over the window is at least minRatio.
// Faults when the window saw no trades at all.
func BuyPressure(minRatio float64) RuleFunc {
	return func(c *domain.Candidate) (string, bool, error) {
		total := c.Market.BuyCount + c.Market.SellCount
		if total == 0 {
			return "", false, ErrMissingData
		}
		ratio := float64(c.Market.BuyCount) / float64(total)
		return fmt.Sprintf("%.2f (%d buys / %d sells)", ratio, c.Market.BuyCount, c.Market.SellCount), ratio >= minRatio, nil
	}
}

// CreatorVerified passes when the creator passed external verification.
func CreatorVerified() RuleFunc {
	return func(c *domain.Candidate) (string, bool, error) {
		return fmt.Sprintf("%t", c.Market.CreatorVerified), c.Market.CreatorVerified, nil
	}
}

// MaxAge passes when the candidate was observed no later than maxAgeMs after
// discovery. Uses the observation timestamp, not wall clock, so scoring stays
// deterministic.
func MaxAge(maxAgeMs int64) RuleFunc {
	return func(c *domain.Candidate) (string, bool, error) {
		if c.Market.ObservedAt == 0 || c.DiscoveredAt == 0 {
			return "", false, ErrMissingData
		}
		age := c.Market.ObservedAt - c.DiscoveredAt
		return fmt.Sprintf("%dms", age), age <= maxAgeMs, nil
	}
}
