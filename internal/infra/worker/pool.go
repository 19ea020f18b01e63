package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// ErrPoolClosed is returned by Submit once Stop has been called.
var ErrPoolClosed = errors.New("worker pool closed")

// Task is one unit of work. The context is the one given to Start.
type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed number of goroutines. Submit blocks
// while the queue is full, so a slow consumer pushes back on the producer.
type Pool struct {
	wg     sync.WaitGroup
	mu     sync.RWMutex
	jobs   chan Task
	quit   chan struct{}
	once   sync.Once
	closed bool
	n      int
	log    *zerolog.Logger
}

func NewPool(workers int, log *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		jobs: make(chan Task, workers*4),
		quit: make(chan struct{}),
		n:    workers,
		log:  log,
	}
}

// Size reports the number of workers.
func (p *Pool) Size() int { return p.n }

// Start launches the workers. They exit after Stop once the queue is drained.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.jobs {
				p.run(ctx, id, task)
			}
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().
				Int("worker", id).
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Msg("worker task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		p.log.Warn().Int("worker", id).Err(err).Msg("worker task error")
	}
}

// Submit queues task, blocking until there is room, ctx is done or the pool
// is stopped.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- task:
		return nil
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return fmt.Errorf("submit: %w", ctx.Err())
	}
}

// Stop rejects new tasks and waits for queued and running ones to finish.
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.quit)
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}
