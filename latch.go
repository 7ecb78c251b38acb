package mthread

import "sync/atomic"

// CountDownLatch blocks waiters until its count reaches zero. Once open it
// stays open; it never resets.
//
// Every write made by a goroutine before its CountDown call is visible to
// any goroutine that returns from Wait.
type CountDownLatch struct {
	count atomic.Int64
	done  chan struct{}
}

// NewCountDownLatch creates a latch that opens after n calls to
// [CountDownLatch.CountDown]. A latch created with n == 0 is already open.
// Panics if n < 0.
func NewCountDownLatch(n int) *CountDownLatch {
	if n < 0 {
		panic("mthread: NewCountDownLatch requires n >= 0")
	}
	l := &CountDownLatch{done: make(chan struct{})}
	l.count.Store(int64(n))
	if n == 0 {
		close(l.done)
	}
	return l
}

// CountDown decrements the count and opens the latch when it reaches zero.
// Panics if the latch is already open.
func (l *CountDownLatch) CountDown() {
	c := l.count.Add(-1)
	switch {
	case c == 0:
		close(l.done)
	case c < 0:
		l.count.Add(1) // undo
		panic("mthread: CountDown called on an open latch")
	}
}

// Wait blocks until the latch is open.
func (l *CountDownLatch) Wait() {
	<-l.done
}

// Done returns a channel that is closed when the latch opens.
func (l *CountDownLatch) Done() <-chan struct{} {
	return l.done
}

// Count returns the number of CountDown calls still needed to open the latch.
func (l *CountDownLatch) Count() int {
	return int(max(l.count.Load(), 0))
}
