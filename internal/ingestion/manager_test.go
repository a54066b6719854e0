package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solana-sniper/internal/domain"
)

// sliceSource emits a fixed set of candidates and then blocks until ctx
// ends, like a live feed with no further events.
type sliceSource struct {
	candidates []*domain.Candidate
}

func (s *sliceSource) Run(ctx context.Context, emit func(*domain.Candidate)) error {
	for _, c := range s.candidates {
		emit(c)
	}
	<-ctx.Done()
	return ctx.Err()
}

type fakeMarket struct {
	snapshot domain.MarketSnapshot
	err      error

	mu    sync.Mutex
	calls int
}

func (m *fakeMarket) Snapshot(ctx context.Context, mint, creator string) (domain.MarketSnapshot, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return domain.MarketSnapshot{}, m.err
	}
	return m.snapshot, nil
}

// collector gathers handled candidates and signals when enough arrived.
type collector struct {
	mu      sync.Mutex
	handled []*domain.Candidate
	want    int
	done    chan struct{}
	once    sync.Once
}

func newCollector(want int) *collector {
	return &collector{want: want, done: make(chan struct{})}
}

func (c *collector) handle(ctx context.Context, cand *domain.Candidate) {
	c.mu.Lock()
	c.handled = append(c.handled, cand)
	n := len(c.handled)
	c.mu.Unlock()
	if n >= c.want {
		c.once.Do(func() { close(c.done) })
	}
}

func (c *collector) wait(t *testing.T) []*domain.Candidate {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for candidates")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.Candidate(nil), c.handled...)
}

func runManager(t *testing.T, m *Manager, sink *collector) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(finished)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-finished:
		case <-time.After(2 * time.Second):
			t.Error("manager did not stop after cancel")
		}
	})
	sink.wait(t)
}

func TestManager_EnrichesAndSequences(t *testing.T) {
	market := &fakeMarket{snapshot: domain.MarketSnapshot{
		LiquiditySOL: 12,
		HolderCount:  40,
		ObservedAt:   7_000,
	}}
	sink := newCollector(1)
	m := NewManager(ManagerOptions{
		Sources: []CandidateSource{&sliceSource{candidates: []*domain.Candidate{
			{Mint: "mint-a", Creator: "creator-a", DiscoveredAt: 6_000},
		}}},
		Market:  market,
		Handler: sink.handle,
	})

	runManager(t, m, sink)

	got := sink.wait(t)[0]
	if got.Market.LiquiditySOL != 12 {
		t.Errorf("LiquiditySOL = %v, want 12", got.Market.LiquiditySOL)
	}
	if got.Market.ObservedAt != 7_000 {
		t.Errorf("ObservedAt = %d, want 7000", got.Market.ObservedAt)
	}
	if got.Seq != 1 {
		t.Errorf("Seq = %d, want 1", got.Seq)
	}
}

func TestManager_SnapshotErrorPassesThrough(t *testing.T) {
	market := &fakeMarket{err: errors.New("rpc down")}
	sink := newCollector(1)
	m := NewManager(ManagerOptions{
		Sources: []CandidateSource{&sliceSource{candidates: []*domain.Candidate{
			{Mint: "mint-a", Creator: "creator-a", DiscoveredAt: 6_000},
		}}},
		Market:  market,
		Handler: sink.handle,
	})

	runManager(t, m, sink)

	got := sink.wait(t)[0]
	if got.Market.LiquiditySOL != 0 {
		t.Errorf("LiquiditySOL = %v, want unenriched zero", got.Market.LiquiditySOL)
	}
	// Observation clock falls back to discovery time.
	if got.Market.ObservedAt != 6_000 {
		t.Errorf("ObservedAt = %d, want 6000", got.Market.ObservedAt)
	}
	if got.Seq != 1 {
		t.Errorf("Seq = %d, want 1", got.Seq)
	}
}

func TestManager_NoMarketSource(t *testing.T) {
	sink := newCollector(1)
	m := NewManager(ManagerOptions{
		Sources: []CandidateSource{&sliceSource{candidates: []*domain.Candidate{
			{Mint: "mint-a", Creator: "creator-a", DiscoveredAt: 3_000},
		}}},
		Handler: sink.handle,
	})

	runManager(t, m, sink)

	got := sink.wait(t)[0]
	if got.Market.ObservedAt != 3_000 {
		t.Errorf("ObservedAt = %d, want 3000", got.Market.ObservedAt)
	}
}

func TestManager_SequencesPerIdentity(t *testing.T) {
	sink := newCollector(3)
	m := NewManager(ManagerOptions{
		Sources: []CandidateSource{&sliceSource{candidates: []*domain.Candidate{
			{Mint: "mint-a", Creator: "creator-a"},
			{Mint: "mint-a", Creator: "creator-a"},
			{Mint: "mint-b", Creator: "creator-b"},
		}}},
		Handler: sink.handle,
		Workers: 1, // deterministic sequencing order
	})

	runManager(t, m, sink)

	seqs := map[string][]uint64{}
	for _, c := range sink.wait(t) {
		seqs[c.Identity()] = append(seqs[c.Identity()], c.Seq)
	}
	a := seqs["mint-a|creator-a"]
	if len(a) != 2 || a[0] != 1 || a[1] != 2 {
		t.Errorf("identity a seqs = %v, want [1 2]", a)
	}
	b := seqs["mint-b|creator-b"]
	if len(b) != 1 || b[0] != 1 {
		t.Errorf("identity b seqs = %v, want [1]", b)
	}
}

func TestManager_PreservesProducerSeq(t *testing.T) {
	sink := newCollector(1)
	m := NewManager(ManagerOptions{
		Sources: []CandidateSource{&sliceSource{candidates: []*domain.Candidate{
			{Mint: "mint-a", Creator: "creator-a", Seq: 42},
		}}},
		Handler: sink.handle,
	})

	runManager(t, m, sink)

	if got := sink.wait(t)[0].Seq; got != 42 {
		t.Errorf("Seq = %d, want producer-assigned 42", got)
	}
}
