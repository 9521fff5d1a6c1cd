package workpool

import (
	"context"
	"sync"

	"case-automation/pkg/log"
)

// Pool is a bounded worker pool for bulk side work, typically fanning
// out observable submissions. Workers are spawned on demand while a
// backlog exists and exit once the queue drains, so an idle pool holds
// no goroutines.
type Pool struct {
	maxWorkers int
	queue      chan func(ctx context.Context)
	l          log.Logger

	mu     sync.Mutex
	active int
}

// New creates a pool with the given worker ceiling and queue capacity.
func New(maxWorkers, queueSize int, l log.Logger) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 1 {
		queueSize = maxWorkers
	}
	return &Pool{
		maxWorkers: maxWorkers,
		queue:      make(chan func(ctx context.Context), queueSize),
		l:          l,
	}
}

// NewBatch returns a completion tracker scoped to one caller. The pool
// is shared between concurrent requests, so each caller waits on its
// own batch rather than on every job in flight.
func (p *Pool) NewBatch() *Batch {
	return &Batch{pool: p}
}

// submit enqueues a job, blocking when the queue is full. A worker is
// spawned when the backlog exceeds the running workers and the ceiling
// allows it.
func (p *Pool) submit(ctx context.Context, job func(ctx context.Context)) {
	p.queue <- job

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active < p.maxWorkers && len(p.queue) > 0 {
		p.active++
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	for {
		select {
		case job := <-p.queue:
			p.run(ctx, job)
		default:
			// Re-check under the lock so a job enqueued between the
			// drain check and the exit is never stranded.
			p.mu.Lock()
			if len(p.queue) > 0 {
				p.mu.Unlock()
				continue
			}
			p.active--
			p.mu.Unlock()
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, job func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			p.l.Errorf(ctx, "Worker job panicked: %v", r)
		}
	}()
	job(ctx)
}

// Batch tracks the submissions of a single caller on a shared pool.
type Batch struct {
	pool *Pool
	wg   sync.WaitGroup
}

// Submit enqueues a job and records it against this batch, blocking
// when the pool's queue is full.
func (b *Batch) Submit(ctx context.Context, job func(ctx context.Context)) {
	b.wg.Add(1)
	b.pool.submit(ctx, func(ctx context.Context) {
		defer b.wg.Done()
		job(ctx)
	})
}

// Wait blocks until every job submitted through this batch has
// finished. Jobs of other batches do not hold it up.
func (b *Batch) Wait() {
	b.wg.Wait()
}
