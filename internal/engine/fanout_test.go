package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOut_PreservesInputOrder(t *testing.T) {
	items := []int{5, 3, 8, 1, 9, 2}

	results := FanOut(context.Background(), 3, items, func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("v%d", n), nil
	})

	require.Len(t, results, len(items))
	for i, res := range results {
		assert.Equal(t, items[i], res.Input)
		assert.Equal(t, fmt.Sprintf("v%d", items[i]), res.Value)
		assert.NoError(t, res.Err)
	}
}

func TestFanOut_FailuresAreIsolated(t *testing.T) {
	boom := errors.New("boom")
	items := []string{"a", "b", "c"}

	results := FanOut(context.Background(), 2, items, func(_ context.Context, s string) (int, error) {
		if s == "b" {
			return 0, boom
		}
		return len(s), nil
	})

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[2].Err)
}

func TestFanOut_BoundsConcurrency(t *testing.T) {
	const workers = 3
	var inFlight, peak atomic.Int64
	var mu sync.Mutex

	items := make([]int, 20)
	FanOut(context.Background(), workers, items, func(_ context.Context, _ int) (struct{}, error) {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int64(workers))
}

func TestFanOut_EmptyInput(t *testing.T) {
	results := FanOut(context.Background(), 4, nil, func(_ context.Context, _ int) (int, error) {
		t.Error("fn must not be called for empty input")
		return 0, nil
	})
	assert.Empty(t, results)
}

func TestFanOut_CancelledContextFailsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := FanOut(ctx, 2, []int{1, 2, 3}, func(_ context.Context, _ int) (int, error) {
		t.Error("fn must not run after cancellation")
		return 0, nil
	})

	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
}
