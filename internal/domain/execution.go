package domain

// TradeAction is the intended action behind an execution.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// AttemptOutcome classifies one submission to one endpoint.
type AttemptOutcome string

const (
	AttemptAccepted AttemptOutcome = "ACCEPTED"
	AttemptRejected AttemptOutcome = "REJECTED"
	AttemptTimeout  AttemptOutcome = "TIMEOUT"
	AttemptError    AttemptOutcome = "ERROR"
	AttemptAborted  AttemptOutcome = "ABORTED" // race already decided before submission finished
)

// BroadcastAttempt records one submission to one endpoint.
type BroadcastAttempt struct {
	Endpoint    string
	SubmittedAt int64 // Unix timestamp in milliseconds
	LatencyMs   int64
	Outcome     AttemptOutcome
	Signature   string // returned transaction reference, if any
	Err         string // transport or endpoint error text, if any
}

// ExecutionResult is the consolidated outcome of one broadcast race.
// Immutable; returned once per intent key.
type ExecutionResult struct {
	IntentKey       string
	Success         bool
	Signature       string // winning transaction reference
	WinningEndpoint string
	Attempts        []BroadcastAttempt
	CompletedAt     int64 // Unix timestamp in milliseconds
}
