package pipeline

import (
	"context"
	"log"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// LogSink prints decisions and executions to the process log.
type LogSink struct{}

var _ Sink = (*LogSink)(nil)

func (LogSink) OnDecision(_ context.Context, c *domain.Candidate, d *domain.Decision) {
	switch {
	case d.Veto != nil:
		log.Printf("[decision] %s tier=%s veto=%s detail=%q cached=%t", c.Mint, d.Tier, d.Veto.Reason, d.Veto.Detail, d.FromCache)
	case d.Scoring != nil:
		log.Printf("[decision] %s tier=%s score=%.0f/%.0f cached=%t", c.Mint, d.Tier, d.Scoring.TotalScore, d.Scoring.MaxScore, d.FromCache)
	default:
		log.Printf("[decision] %s tier=%s cached=%t", c.Mint, d.Tier, d.FromCache)
	}
}

func (LogSink) OnExecution(_ context.Context, d *domain.Decision, res *domain.ExecutionResult) {
	if res.Success {
		log.Printf("[execution] %s won endpoint=%s signature=%s attempts=%d", res.IntentKey, res.WinningEndpoint, res.Signature, len(res.Attempts))
		return
	}
	log.Printf("[execution] %s exhausted attempts=%d", res.IntentKey, len(res.Attempts))
}

// StoreSink appends decisions to a durable log store. Append failures are
// logged and dropped; persistence is best-effort and must not stall the
// hot path.
type StoreSink struct {
	store storage.DecisionLogStore
}

var _ Sink = (*StoreSink)(nil)

// NewStoreSink creates a StoreSink backed by the given store.
func NewStoreSink(store storage.DecisionLogStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) OnDecision(ctx context.Context, _ *domain.Candidate, d *domain.Decision) {
	if err := s.store.Append(ctx, d); err != nil {
		log.Printf("[decision] append log %s: %v", d.Identity, err)
	}
}

func (s *StoreSink) OnExecution(context.Context, *domain.Decision, *domain.ExecutionResult) {}
