package ingestion

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/observability"
)

// Handler receives fully-formed candidate observations, one per call.
// Implementations must be safe for concurrent calls across identities.
type Handler func(ctx context.Context, c *domain.Candidate)

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Sources []CandidateSource
	Market  MarketDataSource // optional; candidates pass through unenriched when nil
	Handler Handler
	Metrics *observability.Metrics // optional
	Workers int                    // concurrent handler workers, default 4
	Verbose bool
}

// Manager fans candidate observations from all sources into the handler.
// It assigns per-identity sequence numbers and enriches market attributes
// before handing off.
type Manager struct {
	sources []CandidateSource
	market  MarketDataSource
	handler Handler
	metrics *observability.Metrics
	seq     *Sequencer
	workers int
	verbose bool
}

// NewManager creates a new ingestion manager.
func NewManager(opts ManagerOptions) *Manager {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Manager{
		sources: opts.Sources,
		market:  opts.Market,
		handler: opts.Handler,
		metrics: opts.Metrics,
		seq:     NewSequencer(),
		workers: workers,
		verbose: opts.Verbose,
	}
}

// Run streams candidates until ctx is cancelled or a source fails
// terminally. Sources run concurrently; handler workers run concurrently
// across candidates.
func (m *Manager) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	events := make(chan *domain.Candidate, 1024)

	for _, src := range m.sources {
		g.Go(func() error {
			return src.Run(ctx, func(c *domain.Candidate) {
				select {
				case events <- c:
				case <-ctx.Done():
				}
			})
		})
	}

	for i := 0; i < m.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case c := <-events:
					m.process(ctx, c)
				}
			}
		})
	}

	return g.Wait()
}

// process enriches, sequences, and hands off one observation.
func (m *Manager) process(ctx context.Context, c *domain.Candidate) {
	if m.market != nil {
		snapshot, err := m.market.Snapshot(ctx, c.Mint, c.Creator)
		if err != nil {
			if m.metrics != nil {
				m.metrics.SnapshotErrors.Inc()
			}
			m.logf("snapshot %s: %v", c.Mint, err)
		} else {
			c.Market = snapshot
		}
	}
	if c.Market.ObservedAt == 0 {
		c.Market.ObservedAt = c.DiscoveredAt
	}

	// Producers may deliver their own sequence numbers; only stamp
	// observations that arrive without one.
	if c.Seq == 0 {
		c.Seq = m.seq.Next(c.Identity())
	}
	if m.metrics != nil {
		m.metrics.CandidatesIngested.Inc()
	}
	m.handler(ctx, c)
}

func (m *Manager) logf(format string, args ...interface{}) {
	if m.verbose {
		log.Printf("[ingestion] "+format, args...)
	}
}
