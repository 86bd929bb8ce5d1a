package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"
)

// Pool errors.
var (
	ErrPoolClosed      = errors.New("worker pool is shut down")
	ErrShutdownTimeout = errors.New("worker pool did not drain within the grace period")
)

// Task is a unit of work run by a Pool worker. ctx is cancelled when the
// pool is forcibly terminated; long tasks should watch it.
type Task func(ctx context.Context)

// Pool is a fixed set of goroutines consuming submitted tasks in FIFO order.
//
// A task that panics crashes the process like any other goroutine, so
// callers recover inside the task when they need containment.
type Pool struct {
	workers int
	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines. workers <= 0 means runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		workers: workers,
		tasks:   make(chan Task, workers),
		ctx:     ctx,
		cancel:  cancel,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for t := range p.tasks {
		t(p.ctx)
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Submit queues t. It blocks while the queue is full and returns
// ErrPoolClosed once Shutdown has been called.
func (p *Pool) Submit(t Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- t
	return nil
}

// Shutdown stops accepting tasks and waits up to grace for queued and running
// tasks to finish. The pool context is cancelled afterwards in every case; if
// the deadline passed first, ErrShutdownTimeout is returned and the remaining
// tasks run against a cancelled context. grace <= 0 waits without limit.
//
// Calling Shutdown more than once is a no-op.
func (p *Pool) Shutdown(grace time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	defer p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	if grace <= 0 {
		<-done
		return nil
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}
