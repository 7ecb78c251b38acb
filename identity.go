package mthread

import "sync"

const (
	mainThreadName    = "main"
	defaultThreadName = "mthread"

	// Terminal names a managed thread takes once its Func has completed.
	NameFinished = "finished"
	NameCrashed  = "crashed"
)

// Identity is the kernel id and display name of a thread.
type Identity struct {
	TID  int
	Name string
}

// threadContext is the identity of one managed thread. It is created and
// only ever touched by the thread it describes.
type threadContext struct {
	tid  int
	name string
}

func (c *threadContext) identity() Identity {
	return Identity{TID: c.tid, Name: c.name}
}

var (
	contexts sync.Map // int -> *threadContext

	mainMu    sync.Mutex
	mainIdent Identity
)

func init() {
	mainIdentity()
}

// enterThread resolves the calling thread's kernel id and registers its
// context. The caller must be locked to its OS thread.
func enterThread() *threadContext {
	c := &threadContext{tid: gettid()}
	contexts.Store(c.tid, c)
	return c
}

func leaveThread(c *threadContext) {
	contexts.CompareAndDelete(c.tid, c)
}

func mainIdentity() Identity {
	mainMu.Lock()
	defer mainMu.Unlock()

	if mainIdent.TID == 0 {
		mainIdent = Identity{TID: mainThreadID(), Name: mainThreadName}
	}
	return mainIdent
}

// AfterFork re-arms the cached main-thread identity. A forked child inherits
// the parent's cached values, which are stale because the kernel gives the
// child a new id. Go cannot register a pthread_atfork handler, so code that
// forks the process must call AfterFork in the child.
func AfterFork() {
	mainMu.Lock()
	mainIdent = Identity{}
	mainMu.Unlock()

	mainIdentity()
}

// CurrentTID returns the kernel id of the calling thread.
//
// Outside a managed thread the result is inherently racy unless the caller
// has called runtime.LockOSThread, because the runtime may move the calling
// goroutine to another thread at any time.
func CurrentTID() int {
	return gettid()
}

// CurrentIdentity returns the identity of the calling thread. Managed
// threads report their display name (or terminal name), the main thread
// reports "main", and any other thread reports an empty name.
func CurrentIdentity() Identity {
	tid := gettid()
	if v, ok := contexts.Load(tid); ok {
		return v.(*threadContext).identity()
	}
	if m := mainIdentity(); m.TID == tid {
		return m
	}
	return Identity{TID: tid}
}

// CurrentName returns the display name of the calling thread.
func CurrentName() string {
	return CurrentIdentity().Name
}

// IsMainThread reports whether the caller runs on the process's main thread.
func IsMainThread() bool {
	return gettid() == mainIdentity().TID
}
