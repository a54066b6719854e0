// Package decision combines safety verdict, score, and cache state into a
// tier: fast-track, deep-analysis, or reject.
package decision

import (
	"time"

	"solana-sniper/internal/cache"
	"solana-sniper/internal/domain"
	"solana-sniper/internal/gate"
	"solana-sniper/internal/scoring"
)

// Thresholds are the tier boundaries. This engine is the only place they
// are compared.
type Thresholds struct {
	// FastScore is the score at or above which a qualified candidate is
	// executed immediately. Qualified candidates below it go to deep analysis.
	FastScore float64
}

// Engine decides a tier per candidate observation. The consult-then-write
// against the speed cache runs atomically per identity, so concurrent
// observations of the same token cannot interleave decisions or regress the
// stored sequence number.
type Engine struct {
	gate       *gate.Gate
	scorer     *scoring.Engine
	speedCache *cache.Cache
	thresholds Thresholds
	now        func() time.Time
}

// New creates a decision engine.
func New(g *gate.Gate, scorer *scoring.Engine, speedCache *cache.Cache, thresholds Thresholds) *Engine {
	return &Engine{
		gate:       g,
		scorer:     scorer,
		speedCache: speedCache,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Decide evaluates one candidate observation.
//
// Rejections are sticky within the cache TTL: a live Reject entry
// short-circuits without re-scoring. A live entry at an equal or newer
// sequence likewise answers from cache. Otherwise the safety gate runs,
// then the scoring engine, and the resulting tier is written back under the
// identity's shard lock.
func (e *Engine) Decide(c *domain.Candidate) *domain.Decision {
	identity := c.Identity()
	nowMs := e.now().UnixMilli()

	var decision *domain.Decision

	e.speedCache.Update(identity, func(prev *cache.Entry) *cache.Entry {
		if prev != nil && (prev.Tier == domain.TierReject || prev.Seq >= c.Seq) {
			decision = &domain.Decision{
				Identity:  identity,
				Tier:      prev.Tier,
				Scoring:   prev.Scoring,
				FromCache: true,
				Seq:       prev.Seq,
				DecidedAt: nowMs,
			}
			return nil
		}

		decision = e.evaluate(c, identity, nowMs)

		return &cache.Entry{
			Tier:    decision.Tier,
			Scoring: decision.Scoring,
			Seq:     c.Seq,
		}
	})

	return decision
}

// evaluate runs gate then scorer for a fresh observation.
func (e *Engine) evaluate(c *domain.Candidate, identity string, nowMs int64) *domain.Decision {
	d := &domain.Decision{
		Identity:  identity,
		Seq:       c.Seq,
		DecidedAt: nowMs,
	}

	verdict := e.gate.Evaluate(c)
	if !verdict.Passed {
		d.Tier = domain.TierReject
		d.Veto = &verdict
		return d
	}

	result := e.scorer.Score(c)
	d.Scoring = result

	switch {
	case result.HardStopTriggered || !result.Qualified:
		d.Tier = domain.TierReject
	case result.TotalScore >= e.thresholds.FastScore:
		d.Tier = domain.TierFast
	default:
		d.Tier = domain.TierDeep
	}
	return d
}
