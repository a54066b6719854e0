package ingestion

import (
	"context"
	"time"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/observability"
	"solana-sniper/internal/rpcx"
)

// WSSource streams launch candidates from a Solana WebSocket log feed.
type WSSource struct {
	endpoint string
	program  string
	parser   *LaunchParser
	config   *rpcx.FeedConfig
	metrics  *observability.Metrics // optional
	now      func() time.Time
}

// NewWSSource creates a WebSocket candidate source for the launch program.
func NewWSSource(endpoint, program string, config *rpcx.FeedConfig, metrics *observability.Metrics) *WSSource {
	return &WSSource{
		endpoint: endpoint,
		program:  program,
		parser:   NewLaunchParser(program),
		config:   config,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run subscribes to launch-program logs and emits parsed candidates until
// ctx is cancelled. Reconnects are handled inside the feed.
func (s *WSSource) Run(ctx context.Context, emit func(*domain.Candidate)) error {
	feed, err := rpcx.NewLaunchFeed(ctx, s.endpoint, s.program, s.config)
	if err != nil {
		return err
	}
	defer feed.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case note, ok := <-feed.Events():
			if !ok {
				return nil
			}
			if s.metrics != nil {
				s.metrics.LaunchEventsSeen.Inc()
			}
			if c := s.parser.Parse(note, s.now().UnixMilli()); c != nil {
				emit(c)
			}
		}
	}
}

// Verify interface compliance at compile time.
var _ CandidateSource = (*WSSource)(nil)
