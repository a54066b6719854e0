package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-sniper/internal/domain"
)

func TestDecisionLogStore_AppendScored(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDecisionLogStore(conn)
	ctx := context.Background()

	d := &domain.Decision{
		Identity: "mint-a|creator-a",
		Tier:     domain.TierFast,
		Scoring: &domain.ScoringResult{
			TotalScore: 85,
			MaxScore:   100,
			Qualified:  true,
			Outcomes: []domain.RuleOutcome{
				{Name: "min_liquidity", Weight: 60, Passed: true},
				{Name: "min_holders", Weight: 25, Passed: true},
			},
		},
		Seq:       3,
		DecidedAt: 1700000000000,
	}

	require.NoError(t, store.Append(ctx, d))

	counts, err := store.CountByTier(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), counts["FAST"])
}

func TestDecisionLogStore_AppendVetoed(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDecisionLogStore(conn)
	ctx := context.Background()

	d := &domain.Decision{
		Identity: "mint-b|creator-b",
		Tier:     domain.TierReject,
		Veto: &domain.SafetyVerdict{
			Passed: false,
			Reason: domain.VetoLiquidityFloor,
			Detail: "liquidity 1.20 SOL below floor 5.00",
		},
		Seq:       1,
		DecidedAt: 1700000000100,
	}

	require.NoError(t, store.Append(ctx, d))

	counts, err := store.CountByTier(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), counts["REJECT"])
}

func TestDecisionLogStore_CountByTier(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDecisionLogStore(conn)
	ctx := context.Background()

	decisions := []*domain.Decision{
		{Identity: "a|a", Tier: domain.TierFast, Seq: 1, DecidedAt: 1},
		{Identity: "b|b", Tier: domain.TierFast, Seq: 1, DecidedAt: 2},
		{Identity: "c|c", Tier: domain.TierDeep, Seq: 1, DecidedAt: 3},
		{Identity: "d|d", Tier: domain.TierReject, Seq: 1, DecidedAt: 4},
	}
	for _, d := range decisions {
		require.NoError(t, store.Append(ctx, d))
	}

	counts, err := store.CountByTier(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), counts["FAST"])
	assert.Equal(t, uint64(1), counts["DEEP"])
	assert.Equal(t, uint64(1), counts["REJECT"])
}
