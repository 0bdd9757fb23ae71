package msgworker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPoolProcessesDispatchedJobs(t *testing.T) {
	pool := NewPool(4, 16)
	pool.Start(context.Background())
	defer pool.Stop()

	var done sync.WaitGroup
	done.Add(10)
	for i := 0; i < 10; i++ {
		ok := pool.TryDispatch(Job{
			InstanceID: "inst-1",
			ChatID:     "chat",
			Handler: func(context.Context) error {
				done.Done()
				return nil
			},
		})
		require.True(t, ok, "dispatch should not block on an idle pool")
	}
	done.Wait()

	waitFor(t, func() bool { return pool.Stats().Processed == 10 })
	stats := pool.Stats()
	assert.Equal(t, int64(10), stats.Dispatched)
	assert.Equal(t, int64(0), stats.Dropped)
}

func TestPoolSameChatRunsInDispatchOrder(t *testing.T) {
	pool := NewPool(8, 64)
	pool.Start(context.Background())
	defer pool.Stop()

	var mu sync.Mutex
	var order []int
	var done sync.WaitGroup

	const jobs = 30
	done.Add(jobs)
	for i := 0; i < jobs; i++ {
		i := i
		ok := pool.TryDispatch(Job{
			InstanceID: "inst-1",
			ChatID:     "5511999990000",
			Handler: func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				done.Done()
				return nil
			},
		})
		require.True(t, ok)
	}
	done.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, jobs)
	for i, got := range order {
		assert.Equal(t, i, got, "same-chat jobs must run in dispatch order")
	}
}

func TestPoolDropsWhenQueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	// Not started: the single queue fills after one job.

	blocker := Job{InstanceID: "inst-1", ChatID: "chat", Handler: func(context.Context) error { return nil }}
	require.True(t, pool.TryDispatch(blocker))
	assert.False(t, pool.TryDispatch(blocker), "full queue must drop, not block")
	assert.Equal(t, int64(1), pool.Stats().Dropped)
}

func TestPoolStopDuringDispatchStorm(t *testing.T) {
	pool := NewPool(4, 8)
	pool.Start(context.Background())

	// Hammer TryDispatch from many goroutines while Stop closes the queues.
	// A send on a closed queue would panic and fail the test.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				pool.TryDispatch(Job{
					InstanceID: "inst-1",
					ChatID:     string(rune('a' + n)),
					Handler:    func(context.Context) error { return nil },
				})
			}
		}(i)
	}

	time.Sleep(time.Millisecond)
	pool.Stop()
	wg.Wait()

	assert.False(t, pool.TryDispatch(Job{
		InstanceID: "inst-1",
		ChatID:     "chat",
		Handler:    func(context.Context) error { return nil },
	}))
}

func TestPoolRejectsAfterStop(t *testing.T) {
	pool := NewPool(2, 8)
	pool.Start(context.Background())
	pool.Stop()

	ok := pool.TryDispatch(Job{InstanceID: "inst-1", ChatID: "chat", Handler: func(context.Context) error { return nil }})
	assert.False(t, ok)
}

func TestPoolSurvivesHandlerPanic(t *testing.T) {
	pool := NewPool(1, 8)
	pool.Start(context.Background())
	defer pool.Stop()

	require.True(t, pool.TryDispatch(Job{
		InstanceID: "inst-1",
		ChatID:     "chat",
		Handler:    func(context.Context) error { panic("boom") },
	}))

	var done sync.WaitGroup
	done.Add(1)
	require.True(t, pool.TryDispatch(Job{
		InstanceID: "inst-1",
		ChatID:     "chat",
		Handler: func(context.Context) error {
			done.Done()
			return nil
		},
	}))
	done.Wait()

	waitFor(t, func() bool { return pool.Stats().Errors == 1 })
}

func TestPoolCountsHandlerErrors(t *testing.T) {
	pool := NewPool(1, 8)
	pool.Start(context.Background())
	defer pool.Stop()

	require.True(t, pool.TryDispatch(Job{
		InstanceID: "inst-1",
		ChatID:     "chat",
		Handler:    func(context.Context) error { return errors.New("send failed") },
	}))

	waitFor(t, func() bool {
		s := pool.Stats()
		return s.Processed == 1 && s.Errors == 1
	})
}
