package mthread

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var (
	// ErrJoinSelf is returned by [Thread.Join] when a thread tries to join
	// itself.
	ErrJoinSelf = errors.New("mthread: thread cannot join itself")

	// ErrDetached is returned by [Thread.Join] after [Thread.Close] has
	// detached the thread.
	ErrDetached = errors.New("mthread: thread is detached")
)

var numCreated atomic.Int32

// NumCreated returns the number of Threads constructed by the process so far.
func NumCreated() int32 {
	return numCreated.Load()
}

// Func is the body of a managed thread. Returning a non-nil error, or
// panicking, is treated as a defect and aborts the process; see [Thread].
type Func func() error

// Thread is a handle to a function running on its own dedicated OS thread.
//
// Start blocks until the new thread has published its kernel id, so [Thread.TID]
// is valid as soon as Start returns. The thread is named after the handle,
// both in-process ([CurrentName]) and for OS tooling.
//
// A Func that fails is never allowed to die silently:
//   - an [*Exception] (returned or panicked) is logged with the thread
//     name, message and stack, then the process aborts;
//   - any other error is logged with the thread name and message, then the
//     process aborts;
//   - a panic with a non-error value is logged as an unknown panic and
//     re-raised;
//   - a [runtime.Goexit] before returning is logged, then the process
//     aborts.
//
// Start, Join and Close are not safe for concurrent use; the accessors are.
type Thread struct {
	fn   Func
	name string
	cfg  config

	started  atomic.Bool
	joined   atomic.Bool
	detached atomic.Bool
	native   *nativeThread
	tid      atomic.Int32
}

// New creates a Thread that will run fn once started. No OS thread exists
// until [Thread.Start]. Without [WithName] the thread is called "Thread<N>",
// where N is the value of the process-wide creation counter.
// Panics if fn is nil.
func New(fn Func, opts ...Option) *Thread {
	if fn == nil {
		panic("mthread: New requires a non-nil Func")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Thread{
		fn:   fn,
		name: cfg.name,
		cfg:  cfg,
	}
	n := numCreated.Add(1)
	if t.name == "" {
		t.name = fmt.Sprintf("Thread%d", n)
	}
	return t
}

// Start creates the OS thread and blocks until it has published its kernel
// id. If the thread cannot be created the handle stays unstarted and the
// error wraps [ErrThreadLimit].
// Panics if the thread was already started.
func (t *Thread) Start() error {
	if !t.started.CompareAndSwap(false, true) {
		panic("mthread: Start called on a started thread")
	}

	log := t.logger()
	latch := NewCountDownLatch(1)
	data := &threadData{
		fn:     t.fn,
		name:   t.name,
		tid:    &t.tid,
		latch:  latch,
		onExit: t.cfg.onExit,
		abort:  t.cfg.abort,
		log:    log,
	}
	t.fn = nil

	native, err := createNativeThread(data.run)
	if err != nil {
		t.started.Store(false)
		t.fn = data.fn
		log.Error().Err(err).Str("thread", t.name).Msg("failed in thread creation")
		return fmt.Errorf("mthread: start %q: %w", t.name, err)
	}
	t.native = native

	// The running thread keeps the handle reachable only until it has
	// published its id; after that, a dropped handle detaches itself.
	runtime.AddCleanup(t, (*nativeThread).releaseOwner, native)

	latch.Wait()
	if t.tid.Load() <= 0 {
		panic("mthread: thread started without a kernel id")
	}
	return nil
}

// Join blocks until the thread has terminated and reclaims its resources.
// It returns [ErrJoinSelf] when called from the thread itself and
// [ErrDetached] after [Thread.Close]; in both cases nothing is waited for.
// Panics if the thread was never started or was already joined.
func (t *Thread) Join() error {
	if !t.started.Load() {
		panic("mthread: Join called before Start")
	}
	if t.joined.Load() {
		panic("mthread: Join called twice")
	}
	if t.detached.Load() {
		return ErrDetached
	}
	if CurrentTID() == int(t.tid.Load()) {
		return ErrJoinSelf
	}

	t.joined.Store(true)
	t.native.join()
	t.native.releaseOwner()
	return nil
}

// Close detaches a thread that was started and not joined: its resources
// are reclaimed when it exits, and Close itself never blocks. Close is a
// no-op for unstarted, joined or already detached threads.
func (t *Thread) Close() error {
	if !t.started.Load() || t.joined.Load() {
		return nil
	}
	if t.detached.CompareAndSwap(false, true) {
		t.native.releaseOwner()
	}
	return nil
}

// TID returns the kernel id of the thread, or 0 before Start.
func (t *Thread) TID() int {
	return int(t.tid.Load())
}

// Name returns the display name of the thread.
func (t *Thread) Name() string {
	return t.name
}

// Started reports whether Start has succeeded.
func (t *Thread) Started() bool {
	return t.started.Load()
}

// Joined reports whether Join has waited for the thread.
func (t *Thread) Joined() bool {
	return t.joined.Load()
}

func (t *Thread) String() string {
	return fmt.Sprintf("Thread(%s, tid=%d)", t.name, t.TID())
}

func (t *Thread) logger() zerolog.Logger {
	if t.cfg.logger != nil {
		return *t.cfg.logger
	}
	return Logger()
}
