package quota

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreEnforcesLimit(t *testing.T) {
	store := NewMemoryStore(Config{Limit: 3, Window: time.Hour})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		status, err := store.Increment(ctx, "alice")
		if err != nil {
			t.Fatalf("Increment %d error = %v", i, err)
		}
		if status.Used != i+1 {
			t.Fatalf("Used = %d, want %d", status.Used, i+1)
		}
	}

	status, err := store.Increment(ctx, "alice")
	if !errors.Is(err, ErrExceeded) {
		t.Fatalf("Increment over limit error = %v, want ErrExceeded", err)
	}
	if status.Remaining != 0 {
		t.Fatalf("Remaining = %d, want 0", status.Remaining)
	}

	// Other users have their own budget.
	if _, err := store.Increment(ctx, "bob"); err != nil {
		t.Fatalf("Increment for other user error = %v", err)
	}
}

func TestMemoryStoreWindowRollover(t *testing.T) {
	store := NewMemoryStore(Config{Limit: 1, Window: time.Hour})
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := store.Increment(ctx, "alice"); err != nil {
		t.Fatalf("Increment error = %v", err)
	}
	if _, err := store.Increment(ctx, "alice"); !errors.Is(err, ErrExceeded) {
		t.Fatalf("expected ErrExceeded, got %v", err)
	}

	// Next window clears the counter.
	now = now.Add(time.Hour)
	status, err := store.Increment(ctx, "alice")
	if err != nil {
		t.Fatalf("Increment after rollover error = %v", err)
	}
	if status.Used != 1 {
		t.Fatalf("Used = %d after rollover, want 1", status.Used)
	}
}

func TestMemoryStoreCheckDoesNotConsume(t *testing.T) {
	store := NewMemoryStore(Config{Limit: 5, Window: time.Hour})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := store.Check(ctx, "alice"); err != nil {
			t.Fatalf("Check error = %v", err)
		}
	}
	status, err := store.Check(ctx, "alice")
	if err != nil {
		t.Fatalf("Check error = %v", err)
	}
	if status.Used != 0 || status.Remaining != 5 {
		t.Fatalf("Check consumed budget: %+v", status)
	}
	if status.ResetAt.IsZero() {
		t.Fatal("ResetAt should be populated")
	}
}

func TestMemoryStoreReset(t *testing.T) {
	store := NewMemoryStore(Config{Limit: 1, Window: time.Hour})
	ctx := context.Background()

	if _, err := store.Increment(ctx, "alice"); err != nil {
		t.Fatalf("Increment error = %v", err)
	}
	if err := store.Reset(ctx, "alice"); err != nil {
		t.Fatalf("Reset error = %v", err)
	}
	if _, err := store.Increment(ctx, "alice"); err != nil {
		t.Fatalf("Increment after reset error = %v", err)
	}
}

func TestMemoryStoreDefaults(t *testing.T) {
	store := NewMemoryStore(Config{})
	if store.cfg.Limit != 20 {
		t.Fatalf("default Limit = %d, want 20", store.cfg.Limit)
	}
	if store.cfg.Window != 24*time.Hour {
		t.Fatalf("default Window = %v, want 24h", store.cfg.Window)
	}
}
