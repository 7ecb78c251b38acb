//go:build linux

package mthread

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSThreadName(t *testing.T) {
	type names struct {
		prctl string
		comm  string
	}
	seen := make(chan names, 1)

	th := New(func() error {
		var n names
		n.prctl, _ = osThreadName()
		comm, err := os.ReadFile(fmt.Sprintf("/proc/self/task/%d/comm", gettid()))
		if err == nil {
			n.comm = strings.TrimSpace(string(comm))
		}
		seen <- n
		return nil
	}, WithName("io-loop"))
	require.NoError(t, th.Start())
	require.NoError(t, th.Join())

	got := <-seen
	assert.Equal(t, "io-loop", got.prctl)
	assert.Equal(t, "io-loop", got.comm, "name must be visible to OS tooling")
}

func TestOSThreadNameTruncated(t *testing.T) {
	seen := make(chan string, 1)
	th := New(func() error {
		n, _ := osThreadName()
		seen <- n
		return nil
	}, WithName("a-very-long-thread-name"))
	require.NoError(t, th.Start())
	require.NoError(t, th.Join())

	assert.Equal(t, "a-very-long-thr", <-seen)
	assert.Equal(t, "a-very-long-thread-name", th.Name(), "in-process name is kept whole")
}

func TestDefaultNameFallback(t *testing.T) {
	seen := make(chan string, 1)
	latch := NewCountDownLatch(1)
	var tid atomic.Int32
	d := &threadData{
		fn: func() error {
			seen <- CurrentName()
			return nil
		},
		tid:   &tid,
		latch: latch,
		abort: func() {},
		log:   Logger(),
	}
	n, err := createNativeThread(d.run)
	require.NoError(t, err)
	latch.Wait()
	n.join()
	n.releaseOwner()

	assert.Equal(t, defaultThreadName, <-seen)
	assert.Positive(t, tid.Load())
}
