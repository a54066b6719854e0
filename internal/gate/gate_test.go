package gate

import (
	"testing"

	"solana-sniper/internal/domain"
)

func testLimits() Limits {
	return Limits{
		MinLiquiditySOL:        5,
		MaxTopHolderPct:        25,
		MaxDevHoldingPct:       15,
		MaxAgeMs:               60_000,
		RequireVerifiedCreator: true,
	}
}

func cleanCandidate() *domain.Candidate {
	return &domain.Candidate{
		Mint:         "mintA",
		Creator:      "creatorA",
		DiscoveredAt: 100_000,
		Market: domain.MarketSnapshot{
			LiquiditySOL:    10,
			TopHolderPct:    10,
			DevHoldingPct:   5,
			CreatorVerified: true,
			ObservedAt:      110_000,
		},
	}
}

func TestEvaluate_Pass(t *testing.T) {
	g := New(testLimits(), nil)
	verdict := g.Evaluate(cleanCandidate())
	if !verdict.Passed {
		t.Fatalf("expected pass, got veto %s (%s)", verdict.Reason, verdict.Detail)
	}
}

func TestEvaluate_BlacklistedCreator(t *testing.T) {
	g := New(testLimits(), []string{"creatorA"})
	verdict := g.Evaluate(cleanCandidate())
	if verdict.Passed || verdict.Reason != domain.VetoCreatorBlacklisted {
		t.Errorf("expected blacklist veto, got %+v", verdict)
	}
}

func TestEvaluate_LiquidityFloor(t *testing.T) {
	g := New(testLimits(), nil)
	c := cleanCandidate()
	c.Market.LiquiditySOL = 4.9
	verdict := g.Evaluate(c)
	if verdict.Passed || verdict.Reason != domain.VetoLiquidityFloor {
		t.Errorf("expected liquidity veto, got %+v", verdict)
	}
}

func TestEvaluate_UnobservedLiquidityNotVetoed(t *testing.T) {
	// A negative reading is an unobserved attribute, not thin liquidity.
	g := New(testLimits(), nil)
	c := cleanCandidate()
	c.Market.LiquiditySOL = -1
	if verdict := g.Evaluate(c); !verdict.Passed {
		t.Errorf("unobserved liquidity must not veto, got %+v", verdict)
	}

	// An observed zero still trips the floor.
	c.Market.LiquiditySOL = 0
	verdict := g.Evaluate(c)
	if verdict.Passed || verdict.Reason != domain.VetoLiquidityFloor {
		t.Errorf("expected liquidity veto for observed zero, got %+v", verdict)
	}
}

func TestEvaluate_LiquidityFloorDisabled(t *testing.T) {
	limits := testLimits()
	limits.MinLiquiditySOL = 0
	g := New(limits, nil)
	c := cleanCandidate()
	c.Market.LiquiditySOL = 0.1
	if verdict := g.Evaluate(c); !verdict.Passed {
		t.Errorf("floor disabled, expected pass, got %+v", verdict)
	}
}

func TestEvaluate_HolderConcentration(t *testing.T) {
	g := New(testLimits(), nil)
	c := cleanCandidate()
	c.Market.TopHolderPct = 30
	verdict := g.Evaluate(c)
	if verdict.Passed || verdict.Reason != domain.VetoHolderConcentration {
		t.Errorf("expected concentration veto, got %+v", verdict)
	}
}

func TestEvaluate_DevHolding(t *testing.T) {
	g := New(testLimits(), nil)
	c := cleanCandidate()
	c.Market.DevHoldingPct = 20
	verdict := g.Evaluate(c)
	if verdict.Passed || verdict.Reason != domain.VetoDevHolding {
		t.Errorf("expected dev holding veto, got %+v", verdict)
	}
}

func TestEvaluate_UnverifiedCreator(t *testing.T) {
	g := New(testLimits(), nil)
	c := cleanCandidate()
	c.Market.CreatorVerified = false
	verdict := g.Evaluate(c)
	if verdict.Passed || verdict.Reason != domain.VetoUnverifiedCreator {
		t.Errorf("expected unverified creator veto, got %+v", verdict)
	}

	limits := testLimits()
	limits.RequireVerifiedCreator = false
	g = New(limits, nil)
	if verdict := g.Evaluate(c); !verdict.Passed {
		t.Errorf("verification not required, expected pass, got %+v", verdict)
	}
}

func TestEvaluate_StaleLaunch(t *testing.T) {
	g := New(testLimits(), nil)
	c := cleanCandidate()
	c.Market.ObservedAt = c.DiscoveredAt + 61_000
	verdict := g.Evaluate(c)
	if verdict.Passed || verdict.Reason != domain.VetoStaleLaunch {
		t.Errorf("expected stale launch veto, got %+v", verdict)
	}
}

func TestEvaluate_VetoOrderIsFixed(t *testing.T) {
	// A candidate violating everything reports the blacklist first.
	g := New(testLimits(), []string{"creatorA"})
	c := cleanCandidate()
	c.Market.LiquiditySOL = 0
	c.Market.TopHolderPct = 90
	verdict := g.Evaluate(c)
	if verdict.Reason != domain.VetoCreatorBlacklisted {
		t.Errorf("expected blacklist veto first, got %s", verdict.Reason)
	}

	// Without the blacklist hit, liquidity comes next.
	g = New(testLimits(), nil)
	verdict = g.Evaluate(c)
	if verdict.Reason != domain.VetoLiquidityFloor {
		t.Errorf("expected liquidity veto next, got %s", verdict.Reason)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	g := New(testLimits(), nil)
	c := cleanCandidate()
	c.Market.DevHoldingPct = 50

	first := g.Evaluate(c)
	for i := 0; i < 10; i++ {
		if next := g.Evaluate(c); next != first {
			t.Fatalf("run %d diverged: %+v vs %+v", i, next, first)
		}
	}
}
