package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studydeck/studydeck/internal/testutil"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	if !testutil.DockerAvailable() {
		t.Skip("docker not available")
	}

	addr := testutil.StartRedis(t)
	store, err := NewRedisStore(context.Background(), RedisConfig{
		Addr:  addr,
		Quota: Config{Limit: 3, Window: time.Hour},
	})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisStoreEnforcesLimit(t *testing.T) {
	store := newTestRedisStore(t)
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

	if _, err := store.Increment(ctx, "alice"); !errors.Is(err, ErrExceeded) {
		t.Fatalf("Increment over limit error = %v, want ErrExceeded", err)
	}

	// Rejected requests must not inflate reported usage.
	status, err := store.Check(ctx, "alice")
	if err != nil {
		t.Fatalf("Check error = %v", err)
	}
	if status.Used != 3 {
		t.Fatalf("Used = %d after rejection, want 3", status.Used)
	}

	// Budget is per user.
	if _, err := store.Increment(ctx, "bob"); err != nil {
		t.Fatalf("Increment for other user error = %v", err)
	}
}

func TestRedisStoreReset(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Increment(ctx, "alice"); err != nil {
			t.Fatalf("Increment error = %v", err)
		}
	}
	if err := store.Reset(ctx, "alice"); err != nil {
		t.Fatalf("Reset error = %v", err)
	}
	status, err := store.Check(ctx, "alice")
	if err != nil {
		t.Fatalf("Check error = %v", err)
	}
	if status.Used != 0 {
		t.Fatalf("Used = %d after reset, want 0", status.Used)
	}
}
