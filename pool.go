package mthread

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by [Pool.Submit] when the pool has been closed.
var ErrPoolClosed = errors.New("mthread: pool is closed")

// Pool runs submitted tasks on a fixed set of managed threads. Unlike a bare
// [Thread], a failing task does not abort the process: errors and panics are
// collected as [*ThreadError] values and returned by [Pool.Close].
type Pool struct {
	tasks   chan func() error
	threads []*Thread
	closed  atomic.Bool

	closeOnce sync.Once
	closeErr  error

	errMu sync.Mutex
	errs  []error

	// Observability counters.
	submitted atomic.Int64
	completed atomic.Int64
	errored   atomic.Int64
	inFlight  atomic.Int64
}

// PoolStats provides a point-in-time snapshot of pool activity.
type PoolStats struct {
	Submitted  int64 // total tasks submitted
	Completed  int64 // tasks finished (success + error)
	Errored    int64 // tasks that returned an error or panicked
	InFlight   int64 // tasks currently executing
	QueueDepth int   // tasks waiting in the queue
	Threads    int   // thread count (fixed at creation)
}

// PoolOption configures a [Pool].
type PoolOption func(*poolConfig)

type poolConfig struct {
	queueSize  int
	namePrefix string
	threadOpts []Option
}

// WithQueueSize sets the task queue buffer size. Default is n * 2.
func WithQueueSize(size int) PoolOption {
	return func(c *poolConfig) {
		if size < 0 {
			panic("mthread: WithQueueSize requires non-negative size")
		}
		c.queueSize = size
	}
}

// WithNamePrefix names the pool threads "<prefix><i>". Default is "pool-".
func WithNamePrefix(prefix string) PoolOption {
	return func(c *poolConfig) {
		c.namePrefix = prefix
	}
}

// WithThreadOptions applies opts to every pool thread. [WithName] is
// overridden by the pool's naming scheme.
func WithThreadOptions(opts ...Option) PoolOption {
	return func(c *poolConfig) {
		c.threadOpts = append(c.threadOpts, opts...)
	}
}

// NewPool starts n managed threads that process tasks until [Pool.Close].
// If a thread cannot be started, the threads already running are stopped
// and the error is returned.
// Panics if n <= 0.
func NewPool(n int, opts ...PoolOption) (*Pool, error) {
	if n <= 0 {
		panic("mthread: NewPool requires n > 0")
	}

	cfg := poolConfig{queueSize: n * 2, namePrefix: "pool-"}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Pool{
		tasks:   make(chan func() error, cfg.queueSize),
		threads: make([]*Thread, 0, n),
	}

	for i := range n {
		threadOpts := append([]Option{}, cfg.threadOpts...)
		threadOpts = append(threadOpts, WithName(fmt.Sprintf("%s%d", cfg.namePrefix, i)))

		th := New(p.worker, threadOpts...)
		if err := th.Start(); err != nil {
			_ = p.Close()
			return nil, err
		}
		p.threads = append(p.threads, th)
	}

	return p, nil
}

func (p *Pool) worker() error {
	for fn := range p.tasks {
		p.runTask(fn)
	}
	return nil
}

func (p *Pool) runTask(fn func() error) {
	p.inFlight.Add(1)
	defer func() {
		p.inFlight.Add(-1)
		p.completed.Add(1)
	}()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = newPanicException(r)
			}
		}()
		err = fn()
	}()
	if err != nil {
		p.errored.Add(1)
		p.errMu.Lock()
		p.errs = append(p.errs, &ThreadError{Thread: CurrentIdentity(), Err: err})
		p.errMu.Unlock()
	}
}

// Stats returns a point-in-time snapshot of pool activity.
// Safe to call concurrently.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Submitted:  p.submitted.Load(),
		Completed:  p.completed.Load(),
		Errored:    p.errored.Load(),
		InFlight:   p.inFlight.Load(),
		QueueDepth: len(p.tasks),
		Threads:    len(p.threads),
	}
}

// Submit submits a task to the pool. It blocks if the queue is full.
// Returns [ErrPoolClosed] if the pool has been closed and ctx.Err() if ctx
// is done before the task is queued.
func (p *Pool) Submit(ctx context.Context, fn func() error) (err error) {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	// Close may close the tasks channel between the check above and the
	// send; the send then panics and is reported as ErrPoolClosed.
	defer func() {
		if r := recover(); r != nil {
			err = ErrPoolClosed
		}
	}()

	select {
	case p.tasks <- fn:
		p.submitted.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit attempts to submit without blocking.
// Returns false if the queue is full or the pool is closed.
func (p *Pool) TrySubmit(fn func() error) (submitted bool) {
	if p.closed.Load() {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			submitted = false
		}
	}()

	select {
	case p.tasks <- fn:
		p.submitted.Add(1)
		return true
	default:
		return false
	}
}

// Close stops accepting new tasks, drains the queue and joins every pool
// thread. It returns the joined errors of all failed tasks.
// Safe to call multiple times; subsequent calls return the same result.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.tasks)

		errs := make([]error, 0)
		for _, th := range p.threads {
			if err := th.Join(); err != nil {
				errs = append(errs, err)
			}
		}

		p.errMu.Lock()
		errs = append(errs, p.errs...)
		p.errMu.Unlock()

		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}
