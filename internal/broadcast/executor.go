package broadcast

import (
	"context"
	"errors"
	"log"
	"time"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// Default timeouts, overridable via Options.
const (
	DefaultEndpointTimeout = 5 * time.Second
	DefaultGlobalTimeout   = 15 * time.Second
)

// ErrNoEndpoints is returned when constructing an executor without endpoints.
var ErrNoEndpoints = errors.New("broadcast: no endpoints configured")

// Options configures an Executor.
type Options struct {
	Endpoints       []Endpoint
	EndpointTimeout time.Duration // per-endpoint submission timeout
	GlobalTimeout   time.Duration // overall race timeout

	// DurableLedger, when set, persists completed results so duplicates
	// after a restart still replay the prior outcome. Optional.
	DurableLedger storage.IntentLedgerStore

	Verbose bool
}

// Executor submits one signed transaction to all configured endpoints
// concurrently. The first acceptance wins; remaining attempts are cancelled
// and logged for diagnostics. Results are exactly-once per intent key.
type Executor struct {
	endpoints       []Endpoint
	endpointTimeout time.Duration
	globalTimeout   time.Duration
	ledger          *ledger
	durable         storage.IntentLedgerStore
	verbose         bool
	now             func() time.Time
}

// NewExecutor creates an executor.
func NewExecutor(opts Options) (*Executor, error) {
	if len(opts.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	if opts.EndpointTimeout <= 0 {
		opts.EndpointTimeout = DefaultEndpointTimeout
	}
	if opts.GlobalTimeout <= 0 {
		opts.GlobalTimeout = DefaultGlobalTimeout
	}
	return &Executor{
		endpoints:       opts.Endpoints,
		endpointTimeout: opts.EndpointTimeout,
		globalTimeout:   opts.GlobalTimeout,
		ledger:          newLedger(),
		durable:         opts.DurableLedger,
		verbose:         opts.Verbose,
		now:             time.Now,
	}, nil
}

// Execute runs the broadcast race for one intent key.
//
// The ledger claim is a single atomic check-and-set: a key that is already
// resolved returns the prior result without touching any endpoint, and a
// concurrent duplicate waits for the in-flight race instead of starting its
// own. Total endpoint exhaustion is reported in the result, not as an error.
func (e *Executor) Execute(ctx context.Context, tx *domain.SignedTransaction, intentKey string) (*domain.ExecutionResult, error) {
	entry, won := e.ledger.begin(intentKey)
	if !won {
		select {
		case <-entry.done:
			return entry.result, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Replay across restarts: a durably recorded result wins over re-racing.
	if e.durable != nil {
		prior, err := e.durable.GetByKey(ctx, intentKey)
		switch {
		case err == nil:
			e.ledger.complete(intentKey, prior)
			return prior, nil
		case !errors.Is(err, storage.ErrNotFound):
			// Durable state unknown; the in-process claim still dedupes.
			e.logf("consult ledger %s: %v", intentKey, err)
		}
	}

	result := e.race(ctx, tx, intentKey)

	if e.durable != nil {
		if err := e.durable.Insert(ctx, result); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			e.logf("record intent %s: %v", intentKey, err)
		}
	}
	e.ledger.complete(intentKey, result)
	return result, nil
}

// race submits to all endpoints and consolidates attempts.
func (e *Executor) race(ctx context.Context, tx *domain.SignedTransaction, intentKey string) *domain.ExecutionResult {
	raceCtx, cancel := context.WithTimeout(ctx, e.globalTimeout)
	defer cancel()

	attemptCh := make(chan domain.BroadcastAttempt, len(e.endpoints))
	for _, ep := range e.endpoints {
		go func(ep Endpoint) {
			attemptCh <- e.submit(raceCtx, ep, tx)
		}(ep)
	}

	result := &domain.ExecutionResult{IntentKey: intentKey}

	// First acceptance wins; the cancel releases the losers, whose attempts
	// are still collected for diagnostics.
	for range e.endpoints {
		attempt := <-attemptCh
		result.Attempts = append(result.Attempts, attempt)
		if attempt.Outcome == domain.AttemptAccepted && !result.Success {
			result.Success = true
			result.Signature = attempt.Signature
			result.WinningEndpoint = attempt.Endpoint
			cancel()
		}
	}

	result.CompletedAt = e.now().UnixMilli()
	if !result.Success {
		e.logf("intent %s exhausted across %d endpoints", intentKey, len(e.endpoints))
	}
	return result
}

// submit runs one endpoint attempt under its own timeout and classifies
// the outcome.
func (e *Executor) submit(ctx context.Context, ep Endpoint, tx *domain.SignedTransaction) domain.BroadcastAttempt {
	epCtx, cancel := context.WithTimeout(ctx, e.endpointTimeout)
	defer cancel()

	start := e.now()
	sig, err := ep.Submit(epCtx, tx)

	attempt := domain.BroadcastAttempt{
		Endpoint:    ep.Name(),
		SubmittedAt: start.UnixMilli(),
		LatencyMs:   e.now().Sub(start).Milliseconds(),
	}

	switch {
	case err == nil:
		attempt.Outcome = domain.AttemptAccepted
		attempt.Signature = sig
	case errors.Is(err, context.Canceled):
		attempt.Outcome = domain.AttemptAborted
		attempt.Err = "race already decided"
	case errors.Is(err, context.DeadlineExceeded):
		attempt.Outcome = domain.AttemptTimeout
		attempt.Err = err.Error()
	default:
		var rej *RejectionError
		if errors.As(err, &rej) {
			attempt.Outcome = domain.AttemptRejected
		} else {
			attempt.Outcome = domain.AttemptError
		}
		attempt.Err = err.Error()
	}
	return attempt
}

func (e *Executor) logf(format string, args ...interface{}) {
	if e.verbose {
		log.Printf("[broadcast] "+format, args...)
	}
}
