package graph

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMap_IndexedResults(t *testing.T) {
	items := []int{5, 1, 3, 0, 2}
	results, errs, err := ParallelMap(context.Background(), items, 0, func(_ context.Context, _ int, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		if n == 3 {
			return 0, errors.New("three")
		}
		return n * 10, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{50, 10, 0, 0, 20}, results)
	assert.Nil(t, errs[0])
	assert.EqualError(t, errs[2], "three")
}

func TestParallelMap_Limit(t *testing.T) {
	var inFlight, peak int32
	items := make([]int, 12)

	_, _, err := ParallelMap(context.Background(), items, 3, func(context.Context, int, int) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, int32(3))
	assert.Greater(t, peak, int32(1), "items must actually overlap")
}

func TestParallelMap_Concurrent(t *testing.T) {
	start := time.Now()
	_, _, err := ParallelMap(context.Background(), make([]int, 4), 0, func(context.Context, int, int) (int, error) {
		time.Sleep(50 * time.Millisecond)
		return 0, nil
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestParallelMap_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var observed int32

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	results, errs, err := ParallelMap(ctx, []int{1, 2, 3}, 0, func(ctx context.Context, _ int, _ int) (int, error) {
		select {
		case <-ctx.Done():
			atomic.AddInt32(&observed, 1)
			return 0, ctx.Err()
		case <-time.After(5 * time.Second):
			return 1, nil
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
	assert.Nil(t, errs)
	assert.Equal(t, int32(3), atomic.LoadInt32(&observed), "every branch sees the cancellation")
}
