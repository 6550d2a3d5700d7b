package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	assert.Equal(t, 4, pool.Workers())
	assert.True(t, pool.IsRunning())
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -3} {
		pool := NewWorkerPool(n)
		assert.Equal(t, runtime.GOMAXPROCS(0), pool.Workers(), "NewWorkerPool(%d)", n)
		pool.Close()
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	jobs := make([]func(), 500)
	for i := range jobs {
		jobs[i] = func() { counter.Add(1) }
	}

	require.True(t, pool.ExecuteAll(jobs))
	assert.Equal(t, int64(500), counter.Load())
}

func TestWorkerPool_ExecuteAllDisjointWrites(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	out := make([]int, 64)
	jobs := make([]func(), len(out))
	for i := range jobs {
		jobs[i] = func() { out[i] = i * i }
	}
	pool.ExecuteAll(jobs)

	for i, v := range out {
		require.Equal(t, i*i, v, "out[%d]", i)
	}
}

func TestWorkerPool_ExecuteAllEmpty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	assert.True(t, pool.ExecuteAll(nil))
}

func TestWorkerPool_ExecuteAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	ran := false
	assert.False(t, pool.ExecuteAll([]func(){func() { ran = true }}))
	assert.False(t, ran, "job ran on a closed pool")
}

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	assert.False(t, pool.IsRunning())
}

func TestWorkerPool_ConcurrentBatches(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var total atomic.Int64
	var wg sync.WaitGroup
	for b := 0; b < 8; b++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobs := make([]func(), 50)
			for i := range jobs {
				jobs[i] = func() { total.Add(1) }
			}
			pool.ExecuteAll(jobs)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(400), total.Load())
}
