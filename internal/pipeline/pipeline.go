// Package pipeline coordinates the decision-and-execution flow:
// observation → decide → (fast track) derive intent key → sign → broadcast.
package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"solana-sniper/internal/broadcast"
	"solana-sniper/internal/custody"
	"solana-sniper/internal/decision"
	"solana-sniper/internal/domain"
	"solana-sniper/internal/idhash"
	"solana-sniper/internal/observability"
)

// Sink receives the core's output events. The core emits; collaborators
// (notification, persistence) format and store. Implementations must be
// safe for concurrent calls.
type Sink interface {
	OnDecision(ctx context.Context, c *domain.Candidate, d *domain.Decision)
	OnExecution(ctx context.Context, d *domain.Decision, res *domain.ExecutionResult)
}

// DeepAnalyzer is the hook point for the external deep-analysis
// collaborator. Deep-tier candidates are handed over; what happens next is
// outside the core.
type DeepAnalyzer interface {
	Enqueue(ctx context.Context, c *domain.Candidate, d *domain.Decision)
}

// PayloadBuilder produces the unsigned transaction payload for a trade.
// Transaction building beyond a signable blob is an external concern.
type PayloadBuilder interface {
	Build(ctx context.Context, c *domain.Candidate, action domain.TradeAction) ([]byte, error)
}

// BuilderFunc adapts a function to the PayloadBuilder interface.
type BuilderFunc func(ctx context.Context, c *domain.Candidate, action domain.TradeAction) ([]byte, error)

func (f BuilderFunc) Build(ctx context.Context, c *domain.Candidate, action domain.TradeAction) ([]byte, error) {
	return f(ctx, c, action)
}

// Options for creating a Pipeline.
type Options struct {
	Decider  *decision.Engine
	Vault    *custody.Vault
	Executor *broadcast.Executor
	Builder  PayloadBuilder

	Analyzer DeepAnalyzer // optional; deep-tier candidates are dropped when nil
	Sinks    []Sink
	Metrics  *observability.Metrics // optional

	// UserID is the custodial account whose wallet signs executions.
	UserID string
	// Action is the trade intent behind fast-track executions.
	Action domain.TradeAction
	// BucketWidthMs is the idempotency time-bucket width.
	BucketWidthMs int64

	Verbose bool
}

// Pipeline processes one candidate observation end to end. Safe for
// concurrent calls across candidates; per-identity ordering is the decision
// engine's concern.
type Pipeline struct {
	decider  *decision.Engine
	vault    *custody.Vault
	executor *broadcast.Executor
	builder  PayloadBuilder
	analyzer DeepAnalyzer
	sinks    []Sink
	metrics  *observability.Metrics

	userID        string
	action        domain.TradeAction
	bucketWidthMs int64
	verbose       bool
	now           func() time.Time
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	action := opts.Action
	if action == "" {
		action = domain.ActionBuy
	}
	return &Pipeline{
		decider:       opts.Decider,
		vault:         opts.Vault,
		executor:      opts.Executor,
		builder:       opts.Builder,
		analyzer:      opts.Analyzer,
		sinks:         opts.Sinks,
		metrics:       opts.Metrics,
		userID:        opts.UserID,
		action:        action,
		bucketWidthMs: opts.BucketWidthMs,
		verbose:       opts.Verbose,
		now:           time.Now,
	}
}

// Handle runs the full flow for one observation. Implements ingestion.Handler.
func (p *Pipeline) Handle(ctx context.Context, c *domain.Candidate) {
	start := p.now()

	d := p.decider.Decide(c)
	p.recordDecision(c, d, start)

	for _, sink := range p.sinks {
		sink.OnDecision(ctx, c, d)
	}

	switch d.Tier {
	case domain.TierReject:
		// Terminal for this observation.
	case domain.TierDeep:
		if p.analyzer != nil {
			p.analyzer.Enqueue(ctx, c, d)
		}
	case domain.TierFast:
		if d.FromCache {
			// The original decision already triggered an execution; the
			// idempotency key would dedupe anyway, but there is no point
			// signing again for a cache replay.
			return
		}
		p.execute(ctx, c, d)
	}
}

// execute derives the intent key, signs, and races the broadcast.
func (p *Pipeline) execute(ctx context.Context, c *domain.Candidate, d *domain.Decision) {
	intentKey := idhash.ComputeIntentKey(c.Mint, c.Creator, d.Tier, p.action, d.DecidedAt, p.bucketWidthMs)

	payload, err := p.builder.Build(ctx, c, p.action)
	if err != nil {
		p.logf("build payload %s: %v", c.Mint, err)
		return
	}

	tx, err := p.vault.Sign(ctx, p.userID, payload)
	if err != nil {
		p.recordSigningFailure(err)
		p.logf("sign %s: %v", c.Mint, err)
		return
	}

	res, err := p.executor.Execute(ctx, tx, intentKey)
	if err != nil {
		p.logf("execute %s: %v", intentKey, err)
		return
	}
	p.recordExecution(res)

	for _, sink := range p.sinks {
		sink.OnExecution(ctx, d, res)
	}
}

func (p *Pipeline) recordDecision(c *domain.Candidate, d *domain.Decision, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.DecisionsTotal.WithLabelValues(string(d.Tier)).Inc()
	if d.FromCache {
		p.metrics.CacheHits.Inc()
	}
	if d.Veto != nil {
		p.metrics.VetoesTotal.WithLabelValues(string(d.Veto.Reason)).Inc()
	}
	if d.Scoring != nil {
		for _, name := range d.Scoring.FaultedRules() {
			p.metrics.RuleFaults.WithLabelValues(name).Inc()
		}
	}
	p.metrics.DecisionLatency.Observe(p.now().Sub(start).Seconds())
	p.metrics.LastDecisionAt.SetToCurrentTime()
}

func (p *Pipeline) recordSigningFailure(err error) {
	if p.metrics == nil {
		return
	}
	kind := "other"
	switch {
	case errors.Is(err, custody.ErrCorruptCiphertext):
		kind = "corrupt_ciphertext"
	case errors.Is(err, custody.ErrMissingWallet):
		kind = "missing_wallet"
	case errors.Is(err, custody.ErrKeyMismatch):
		kind = "key_mismatch"
	}
	p.metrics.SigningFailures.WithLabelValues(kind).Inc()
}

func (p *Pipeline) recordExecution(res *domain.ExecutionResult) {
	if p.metrics == nil {
		return
	}
	outcome := "exhausted"
	if res.Success {
		outcome = "won"
	}
	p.metrics.ExecutionsTotal.WithLabelValues(outcome).Inc()
	for _, a := range res.Attempts {
		p.metrics.BroadcastAttempts.WithLabelValues(a.Endpoint, string(a.Outcome)).Inc()
		p.metrics.BroadcastLatency.WithLabelValues(a.Endpoint).Observe(float64(a.LatencyMs) / 1000)
	}
	p.metrics.LastExecutionAt.SetToCurrentTime()
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.verbose {
		log.Printf("[pipeline] "+format, args...)
	}
}
