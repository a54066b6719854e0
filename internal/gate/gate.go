// Package gate evaluates hard-stop disqualifying conditions before scoring.
package gate

import (
	"fmt"

	"solana-sniper/internal/domain"
)

// Limits are the configured safety thresholds.
type Limits struct {
	// MinLiquiditySOL is the liquidity floor. Below it the candidate is vetoed.
	MinLiquiditySOL float64
	// MaxTopHolderPct is the ownership concentration ceiling.
	MaxTopHolderPct float64
	// MaxDevHoldingPct is the ceiling on the creator's own holding.
	MaxDevHoldingPct float64
	// MaxAgeMs vetoes launches observed too long after discovery.
	MaxAgeMs int64
	// RequireVerifiedCreator vetoes candidates whose creator failed verification.
	RequireVerifiedCreator bool
}

// Gate vetoes candidates that must never reach the scoring engine.
// Pure and deterministic over candidate attributes; safe for concurrent use.
type Gate struct {
	limits      Limits
	blacklisted map[string]bool // creator addresses
}

// New creates a gate with the given limits and creator blacklist.
func New(limits Limits, blacklist []string) *Gate {
	bl := make(map[string]bool, len(blacklist))
	for _, addr := range blacklist {
		bl[addr] = true
	}
	return &Gate{limits: limits, blacklisted: bl}
}

// Evaluate returns the first veto found, in fixed order, or a pass.
// A veto is unrecoverable for this observation regardless of score.
func (g *Gate) Evaluate(c *domain.Candidate) domain.SafetyVerdict {
	if g.blacklisted[c.Creator] {
		return domain.Veto(domain.VetoCreatorBlacklisted, c.Creator)
	}

	// A negative reading means liquidity could not be observed; the scoring
	// engine reports that as a rule fault instead of a veto here.
	if g.limits.MinLiquiditySOL > 0 && c.Market.LiquiditySOL >= 0 && c.Market.LiquiditySOL < g.limits.MinLiquiditySOL {
		return domain.Veto(domain.VetoLiquidityFloor,
			fmt.Sprintf("%.2f SOL < floor %.2f SOL", c.Market.LiquiditySOL, g.limits.MinLiquiditySOL))
	}

	if g.limits.MaxTopHolderPct > 0 && c.Market.TopHolderPct > g.limits.MaxTopHolderPct {
		return domain.Veto(domain.VetoHolderConcentration,
			fmt.Sprintf("top holder %.1f%% > ceiling %.1f%%", c.Market.TopHolderPct, g.limits.MaxTopHolderPct))
	}

	if g.limits.MaxDevHoldingPct > 0 && c.Market.DevHoldingPct > g.limits.MaxDevHoldingPct {
		return domain.Veto(domain.VetoDevHolding,
			fmt.Sprintf("dev holds %.1f%% > ceiling %.1f%%", c.Market.DevHoldingPct, g.limits.MaxDevHoldingPct))
	}

	if g.limits.RequireVerifiedCreator && !c.Market.CreatorVerified {
		return domain.Veto(domain.VetoUnverifiedCreator, c.Creator)
	}

	if g.limits.MaxAgeMs > 0 && c.Market.ObservedAt > 0 {
		if age := c.AgeMs(c.Market.ObservedAt); age > g.limits.MaxAgeMs {
			return domain.Veto(domain.VetoStaleLaunch,
				fmt.Sprintf("observed %dms after discovery, limit %dms", age, g.limits.MaxAgeMs))
		}
	}

	return domain.Pass()
}
