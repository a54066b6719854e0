package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// DecisionLogStore implements storage.DecisionLogStore using ClickHouse.
// Decisions are append-only analytical rows; nothing on the hot path reads them.
type DecisionLogStore struct {
	conn *Conn
}

// NewDecisionLogStore creates a new DecisionLogStore.
func NewDecisionLogStore(conn *Conn) *DecisionLogStore {
	return &DecisionLogStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DecisionLogStore = (*DecisionLogStore)(nil)

// Append inserts one decision row.
func (s *DecisionLogStore) Append(ctx context.Context, d *domain.Decision) error {
	var (
		score, maxScore float64
		hardStop        uint8
		hardStopReason  string
		outcomes        []byte
		vetoReason      string
		vetoDetail      string
		fromCache       uint8
	)
	if d.Scoring != nil {
		score = d.Scoring.TotalScore
		maxScore = d.Scoring.MaxScore
		if d.Scoring.HardStopTriggered {
			hardStop = 1
		}
		hardStopReason = d.Scoring.HardStopReason

		var err error
		outcomes, err = json.Marshal(d.Scoring.Outcomes)
		if err != nil {
			return fmt.Errorf("marshal rule outcomes: %w", err)
		}
	}
	if d.Veto != nil {
		vetoReason = string(d.Veto.Reason)
		vetoDetail = d.Veto.Detail
	}
	if d.FromCache {
		fromCache = 1
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO decision_log (
			identity, tier, seq, decided_at_ms, from_cache,
			score, max_score, hard_stop, hard_stop_reason,
			veto_reason, veto_detail, rule_outcomes
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		d.Identity, string(d.Tier), d.Seq, uint64(d.DecidedAt), fromCache,
		score, maxScore, hardStop, hardStopReason,
		vetoReason, vetoDetail, string(outcomes),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// CountByTier returns decision counts grouped by tier, for offline reporting.
func (s *DecisionLogStore) CountByTier(ctx context.Context) (map[string]uint64, error) {
	query := `
		SELECT tier, count() AS n
		FROM decision_log
		GROUP BY tier
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query decision counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var (
			tier string
			n    uint64
		)
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, fmt.Errorf("scan decision count: %w", err)
		}
		counts[tier] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decision counts: %w", err)
	}
	return counts, nil
}
