package repository

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestMemoryRateLimitStore_CountsWithinWindow(t *testing.T) {
	store := NewMemoryRateLimitStore()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := store.Hit(ctx, "webhook:inst-1:10.0.0.1", time.Minute)
		if err != nil {
			t.Fatalf("Hit() error: %v", err)
		}
		if got != want {
			t.Fatalf("Hit() = %d, want %d", got, want)
		}
	}
}

func TestMemoryRateLimitStore_KeysAreIndependent(t *testing.T) {
	store := NewMemoryRateLimitStore()
	ctx := context.Background()

	if _, err := store.Hit(ctx, "webhook:inst-1:10.0.0.1", time.Minute); err != nil {
		t.Fatalf("Hit() error: %v", err)
	}
	got, err := store.Hit(ctx, "webhook:inst-1:10.0.0.2", time.Minute)
	if err != nil {
		t.Fatalf("Hit() error: %v", err)
	}
	if got != 1 {
		t.Fatalf("fresh key Hit() = %d, want 1", got)
	}
}

func TestMemoryRateLimitStore_WindowExpiryResetsCount(t *testing.T) {
	store := NewMemoryRateLimitStore()
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		if _, err := store.Hit(ctx, "webhook:inst-1:10.0.0.1", time.Minute); err != nil {
			t.Fatalf("Hit() error: %v", err)
		}
	}

	current = current.Add(61 * time.Second)
	got, err := store.Hit(ctx, "webhook:inst-1:10.0.0.1", time.Minute)
	if err != nil {
		t.Fatalf("Hit() error: %v", err)
	}
	if got != 1 {
		t.Fatalf("Hit() after window expiry = %d, want 1", got)
	}
}

func TestMemoryRateLimitStore_ConcurrentHitsLoseNoIncrement(t *testing.T) {
	store := NewMemoryRateLimitStore()
	ctx := context.Background()

	const goroutines = 16
	const hitsEach = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < hitsEach; j++ {
				if _, err := store.Hit(ctx, "webhook:inst-1:10.0.0.1", time.Minute); err != nil {
					t.Errorf("Hit() error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, err := store.Hit(ctx, "webhook:inst-1:10.0.0.1", time.Minute)
	if err != nil {
		t.Fatalf("Hit() error: %v", err)
	}
	if want := int64(goroutines*hitsEach + 1); got != want {
		t.Fatalf("final count = %d, want %d", got, want)
	}
}

func TestMemoryRateLimitStore_SweepDropsExpiredWindows(t *testing.T) {
	store := NewMemoryRateLimitStore()
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	for i := 0; i < sweepThreshold+1; i++ {
		key := "webhook:inst-1:" + strconv.Itoa(i)
		if _, err := store.Hit(ctx, key, time.Second); err != nil {
			t.Fatalf("Hit() error: %v", err)
		}
	}

	current = current.Add(2 * time.Second)
	if _, err := store.Hit(ctx, "webhook:inst-2:fresh", time.Minute); err != nil {
		t.Fatalf("Hit() error: %v", err)
	}

	store.mu.Lock()
	size := len(store.windows)
	store.mu.Unlock()
	if size > 2 {
		t.Fatalf("expired windows were not swept, map still holds %d entries", size)
	}
}
