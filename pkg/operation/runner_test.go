package operation

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_ForEach(t *testing.T) {
	for _, jobs := range []int{0, 1, 3, 16} {
		r := runner{jobs: jobs}
		seen := make([]int32, 10)
		var calls atomic.Int32

		err := r.forEach(context.Background(), len(seen), func(_ context.Context, i int) {
			atomic.AddInt32(&seen[i], 1)
			calls.Add(1)
		})
		require.NoError(t, err)
		assert.Equal(t, int32(10), calls.Load(), "jobs=%d", jobs)
		for i, n := range seen {
			assert.Equal(t, int32(1), n, "jobs=%d index=%d", jobs, i)
		}
	}
}

func TestRunner_ForEach_Limit(t *testing.T) {
	r := runner{jobs: 2}
	var running, peak atomic.Int32
	block := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- r.forEach(context.Background(), 6, func(_ context.Context, _ int) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-block
			running.Add(-1)
		})
	}()

	close(block)
	require.NoError(t, <-done)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
