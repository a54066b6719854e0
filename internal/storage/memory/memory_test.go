package memory

import (
	"context"
	"errors"
	"testing"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

func testKeyMaterial(userID string) *domain.EncryptedKeyMaterial {
	return &domain.EncryptedKeyMaterial{
		UserID:     userID,
		PublicKey:  "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		Ciphertext: []byte{1, 2, 3, 4},
		Nonce:      []byte{5, 6, 7},
		KDF: domain.KDFParams{
			Salt:      []byte{8, 9},
			Time:      2,
			MemoryKiB: 64 * 1024,
			Threads:   2,
		},
		CreatedAt: 1_700_000_000_000,
	}
}

func TestWalletStore_InsertAndGet(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testKeyMaterial("user-1")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := store.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if got.PublicKey != "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin" {
		t.Errorf("PublicKey = %s", got.PublicKey)
	}
	if got.KDF.MemoryKiB != 64*1024 {
		t.Errorf("KDF.MemoryKiB = %d", got.KDF.MemoryKiB)
	}
}

func TestWalletStore_DuplicateUser(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testKeyMaterial("user-1")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Insert(ctx, testKeyMaterial("user-1")); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("second Insert() error = %v, want ErrDuplicateKey", err)
	}
}

func TestWalletStore_NotFound(t *testing.T) {
	store := NewWalletStore()

	if _, err := store.GetByUserID(context.Background(), "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByUserID() error = %v, want ErrNotFound", err)
	}
}

func TestWalletStore_InvalidInput(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Insert(nil) error = %v, want ErrInvalidInput", err)
	}
	if err := store.Insert(ctx, &domain.EncryptedKeyMaterial{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Insert(empty user) error = %v, want ErrInvalidInput", err)
	}
}

func TestWalletStore_CopiesOnWriteAndRead(t *testing.T) {
	store := NewWalletStore()
	ctx := context.Background()

	in := testKeyMaterial("user-1")
	if err := store.Insert(ctx, in); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	in.Ciphertext[0] = 0xFF

	got, err := store.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if got.Ciphertext[0] != 1 {
		t.Error("stored ciphertext mutated through caller's slice")
	}

	got.KDF.Salt[0] = 0xFF
	again, _ := store.GetByUserID(ctx, "user-1")
	if again.KDF.Salt[0] != 8 {
		t.Error("stored salt mutated through returned copy")
	}
}

func testResult(key string) *domain.ExecutionResult {
	return &domain.ExecutionResult{
		IntentKey:       key,
		Success:         true,
		Signature:       "tx-sig",
		WinningEndpoint: "primary",
		Attempts: []domain.BroadcastAttempt{
			{Endpoint: "primary", Outcome: domain.AttemptAccepted, Signature: "tx-sig", LatencyMs: 40},
			{Endpoint: "backup", Outcome: domain.AttemptAborted},
		},
		CompletedAt: 1_700_000_000_500,
	}
}

func TestIntentLedgerStore_InsertAndGet(t *testing.T) {
	store := NewIntentLedgerStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testResult("key-1")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := store.GetByKey(ctx, "key-1")
	if err != nil {
		t.Fatalf("GetByKey() error = %v", err)
	}
	if !got.Success || got.WinningEndpoint != "primary" {
		t.Errorf("result = %+v", got)
	}
	if len(got.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(got.Attempts))
	}
}

func TestIntentLedgerStore_DuplicateKey(t *testing.T) {
	store := NewIntentLedgerStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testResult("key-1")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Insert(ctx, testResult("key-1")); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("second Insert() error = %v, want ErrDuplicateKey", err)
	}
}

func TestIntentLedgerStore_NotFound(t *testing.T) {
	store := NewIntentLedgerStore()

	if _, err := store.GetByKey(context.Background(), "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByKey() error = %v, want ErrNotFound", err)
	}
}

func TestIntentLedgerStore_CopiesAttempts(t *testing.T) {
	store := NewIntentLedgerStore()
	ctx := context.Background()

	in := testResult("key-1")
	if err := store.Insert(ctx, in); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	in.Attempts[0].Outcome = domain.AttemptError

	got, _ := store.GetByKey(ctx, "key-1")
	if got.Attempts[0].Outcome != domain.AttemptAccepted {
		t.Error("stored attempts mutated through caller's slice")
	}
}

func TestDecisionLogStore_AppendAndAll(t *testing.T) {
	store := NewDecisionLogStore()
	ctx := context.Background()

	decisions := []*domain.Decision{
		{Identity: "mint-a|creator-a", Tier: domain.TierFast, Seq: 1},
		{Identity: "mint-b|creator-b", Tier: domain.TierReject, Seq: 1},
	}
	for _, d := range decisions {
		if err := store.Append(ctx, d); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	all := store.All()
	if len(all) != 2 {
		t.Fatalf("All() = %d rows, want 2", len(all))
	}
	if all[0].Identity != "mint-a|creator-a" || all[1].Tier != domain.TierReject {
		t.Errorf("rows out of order: %+v", all)
	}

	// Mutating the appended decision must not reach the log.
	decisions[0].Tier = domain.TierDeep
	if store.All()[0].Tier != domain.TierFast {
		t.Error("log row mutated through caller's pointer")
	}
}

func TestDecisionLogStore_InvalidInput(t *testing.T) {
	store := NewDecisionLogStore()
	ctx := context.Background()

	if err := store.Append(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Append(nil) error = %v, want ErrInvalidInput", err)
	}
	if err := store.Append(ctx, &domain.Decision{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Append(empty identity) error = %v, want ErrInvalidInput", err)
	}
}
