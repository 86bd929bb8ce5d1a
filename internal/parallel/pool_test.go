package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsEveryTask(t *testing.T) {
	p := NewPool(4)
	var wg sync.WaitGroup
	var ran int64

	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func(context.Context) {
			defer wg.Done()
			atomic.AddInt64(&ran, 1)
		}))
	}
	wg.Wait()

	assert.Equal(t, int64(100), ran)
	assert.NoError(t, p.Shutdown(time.Second))
}

func TestPool_DefaultWorkers(t *testing.T) {
	p := NewPool(0)
	defer p.Shutdown(time.Second)
	assert.Equal(t, runtime.NumCPU(), p.Workers())
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := NewPool(2)
	require.NoError(t, p.Shutdown(time.Second))

	err := p.Submit(func(context.Context) {})
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.NoError(t, p.Shutdown(time.Second), "second shutdown is a no-op")
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	p := NewPool(1)
	var ran int64
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(func(context.Context) {
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&ran, 1)
		}))
	}

	require.NoError(t, p.Shutdown(5*time.Second))
	assert.Equal(t, int64(10), atomic.LoadInt64(&ran))
}

func TestPool_ShutdownTimeoutCancelsTasks(t *testing.T) {
	p := NewPool(1)
	started := make(chan struct{})
	cancelled := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	}))
	<-started

	err := p.Shutdown(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrShutdownTimeout)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not observe cancellation")
	}
}
