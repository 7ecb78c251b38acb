package mthread

import (
	"errors"
	"fmt"
)

// ThreadError wraps an error together with the [Identity] of the thread that
// produced it.
type ThreadError struct {
	Thread Identity
	Err    error
}

func (e *ThreadError) Error() string {
	return fmt.Sprintf("thread %q (tid %d) failed: %v", e.Thread.Name, e.Thread.TID, e.Err)
}

func (e *ThreadError) Unwrap() error {
	return e.Err
}

// IsThreadError reports whether err (or any error in its chain) is a [*ThreadError].
func IsThreadError(err error) bool {
	if err == nil {
		return false
	}
	var te *ThreadError
	return errors.As(err, &te)
}

// ThreadOf extracts the [Identity] from the first [*ThreadError] in err's chain.
func ThreadOf(err error) (Identity, bool) {
	if err == nil {
		return Identity{}, false
	}

	var te *ThreadError
	if errors.As(err, &te) {
		return te.Thread, true
	}
	return Identity{}, false
}

// AllThreadErrors recursively collects every [*ThreadError] from err's chain,
// including errors joined via [errors.Join]. Returns nil if none are found.
func AllThreadErrors(err error) []*ThreadError {
	if err == nil {
		return nil
	}

	var out []*ThreadError
	collectThreadErrors(err, &out)
	return out
}

func collectThreadErrors(err error, out *[]*ThreadError) {
	switch e := err.(type) {
	case *ThreadError:
		*out = append(*out, e)

	case interface{ Unwrap() []error }:
		for _, sub := range e.Unwrap() {
			collectThreadErrors(sub, out)
		}

	case interface{ Unwrap() error }:
		collectThreadErrors(e.Unwrap(), out)
	}
}

// outcomeKind tags how a thread's Func completed.
type outcomeKind int

const (
	outcomeFinished  outcomeKind = iota
	outcomeException             // *Exception: message and stack
	outcomeError                 // any other error: message only
	outcomeUnknown               // panic with a non-error value
	outcomeGoexit                // runtime.Goexit before returning
)

type outcome struct {
	kind  outcomeKind
	exc   *Exception
	err   error
	value any
}

// invoke runs fn and captures how it completed, including panics.
func invoke(fn Func) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = classifyPanic(r)
		}
	}()
	return classify(fn())
}

func classify(err error) outcome {
	if err == nil {
		return outcome{kind: outcomeFinished}
	}
	var exc *Exception
	if errors.As(err, &exc) {
		return outcome{kind: outcomeException, exc: exc, err: err}
	}
	return outcome{kind: outcomeError, err: err}
}

func classifyPanic(r any) outcome {
	if err, ok := r.(error); ok {
		return classify(err)
	}
	return outcome{kind: outcomeUnknown, value: r}
}
