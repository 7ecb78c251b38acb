package mthread

import (
	"errors"
	"runtime"
	"sync/atomic"
)

// ErrThreadLimit is returned by [Thread.Start] when the process-wide cap set
// with [SetMaxThreads] has been reached.
var ErrThreadLimit = errors.New("mthread: thread limit reached")

var (
	maxThreads atomic.Int64 // 0 means unlimited
	tracked    atomic.Int64
)

// SetMaxThreads caps the number of tracked native threads and returns the
// previous cap. A thread stays tracked until it has exited and its handle
// has been joined or detached. Zero removes the cap.
// SetMaxThreads panics if n is negative.
func SetMaxThreads(n int) int {
	if n < 0 {
		panic("mthread: SetMaxThreads requires n >= 0")
	}
	return int(maxThreads.Swap(int64(n)))
}

// NumTracked returns the number of native threads whose resources have not
// been reclaimed yet.
func NumTracked() int64 {
	return tracked.Load()
}

// nativeThread is the OS thread backing a started Thread. It carries two
// references: one held by the running thread and one by the owning handle.
// The thread stops being tracked once both are gone.
type nativeThread struct {
	done          chan struct{}
	refs          atomic.Int32
	ownerReleased atomic.Bool
}

func reserveThread() bool {
	for {
		cur := tracked.Load()
		if limit := maxThreads.Load(); limit > 0 && cur >= limit {
			return false
		}
		if tracked.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// createNativeThread runs entry on a dedicated OS thread.
func createNativeThread(entry func()) (*nativeThread, error) {
	if !reserveThread() {
		return nil, ErrThreadLimit
	}

	n := &nativeThread{done: make(chan struct{})}
	n.refs.Store(2)
	go n.run(entry, nil)
	return n, nil
}

// run locks the goroutine to its OS thread and calls entry. placed, if not
// nil, is closed once the lock is held.
func (n *nativeThread) run(entry func(), placed chan<- struct{}) {
	// Never unlocked on a worker thread: the runtime terminates the OS
	// thread when this goroutine exits, so no other goroutine ever inherits
	// its name.
	runtime.LockOSThread()
	if placed != nil {
		close(placed)
	}

	// A goroutine started from the main goroutine usually runs next on the
	// creator's thread, which may be the process's initial thread. Hold that
	// thread until a replacement is locked elsewhere, then give it back.
	if gettid() == mainThreadID() {
		next := make(chan struct{})
		go n.run(entry, next)
		<-next
		runtime.UnlockOSThread()
		return
	}

	defer close(n.done)
	defer n.unref()

	entry()
}

// join blocks until the thread has terminated.
func (n *nativeThread) join() {
	<-n.done
}

// releaseOwner drops the owner's reference. Only the first call counts.
func (n *nativeThread) releaseOwner() {
	if n.ownerReleased.CompareAndSwap(false, true) {
		n.unref()
	}
}

func (n *nativeThread) unref() {
	if n.refs.Add(-1) == 0 {
		tracked.Add(-1)
	}
}
