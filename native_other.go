//go:build !linux

package mthread

import (
	"runtime"
	"strconv"
	"strings"
)

// Without gettid, managed threads are identified by the id of the goroutine
// pinned to them. The pin holds for the thread's whole life, so the id is
// stable and positive.
func gettid() int {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))
	if len(fields) == 0 {
		return 0
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return id
}

// mainThreadID is the id of the main goroutine.
func mainThreadID() int {
	return 1
}

func setOSThreadName(string) error { return nil }

func osThreadName() (string, error) { return "", nil }
