package ingestion

import (
	"sync"
	"testing"

	"solana-sniper/internal/domain"
)

func TestSortCandidates(t *testing.T) {
	candidates := []*domain.Candidate{
		{Mint: "d", Slot: 20, TxSignature: "sig-b", Seq: 1},
		{Mint: "a", Slot: 10, TxSignature: "sig-b", Seq: 2},
		{Mint: "c", Slot: 20, TxSignature: "sig-a", Seq: 9},
		{Mint: "b", Slot: 10, TxSignature: "sig-b", Seq: 1},
	}

	SortCandidates(candidates)

	got := make([]string, len(candidates))
	for i, c := range candidates {
		got[i] = c.Mint
	}
	want := []string{"b", "a", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSequencer_MonotonicPerIdentity(t *testing.T) {
	seq := NewSequencer()

	for i := uint64(1); i <= 5; i++ {
		if got := seq.Next("mint-a|creator-a"); got != i {
			t.Errorf("Next(a) = %d, want %d", got, i)
		}
	}

	// Independent identity starts back at 1.
	if got := seq.Next("mint-b|creator-b"); got != 1 {
		t.Errorf("Next(b) = %d, want 1", got)
	}
}

func TestSequencer_Concurrent(t *testing.T) {
	seq := NewSequencer()

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	seen := make([]map[uint64]bool, workers)
	for w := 0; w < workers; w++ {
		seen[w] = make(map[uint64]bool, perWorker)
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				seen[w][seq.Next("shared")] = true
			}
		}(w)
	}
	wg.Wait()

	// Every value in 1..workers*perWorker handed out exactly once.
	all := make(map[uint64]bool)
	for _, m := range seen {
		for v := range m {
			if all[v] {
				t.Fatalf("sequence %d handed out twice", v)
			}
			all[v] = true
		}
	}
	for v := uint64(1); v <= workers*perWorker; v++ {
		if !all[v] {
			t.Fatalf("sequence %d never handed out", v)
		}
	}
}
