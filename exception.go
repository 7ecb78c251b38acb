package mthread

import (
	"fmt"
	"runtime"
)

// Exception is a failure that carries the stack trace of the goroutine that
// raised it. When a thread's Func returns or panics with an *Exception, the
// message and trace are logged with the thread name before the process is
// aborted.
type Exception struct {
	// Message describes the failure.
	Message string

	// Stack is the goroutine stack trace captured when the Exception was
	// created.
	Stack string

	// Cause is the underlying error, if any.
	Cause error
}

// NewException creates an *Exception with a formatted message and captures
// the caller's stack.
func NewException(format string, args ...any) *Exception {
	return &Exception{
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(),
	}
}

// WrapException wraps err in an *Exception, capturing the caller's stack.
// Returns nil if err is nil.
func WrapException(err error) *Exception {
	if err == nil {
		return nil
	}
	return &Exception{
		Message: err.Error(),
		Stack:   captureStack(),
		Cause:   err,
	}
}

// Error returns the message. The stack is kept separate so log lines stay
// readable.
func (e *Exception) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Exception) Unwrap() error { return e.Cause }

func newPanicException(v any) *Exception {
	e := &Exception{
		Message: fmt.Sprintf("panic: %v", v),
		Stack:   captureStack(),
	}
	if err, ok := v.(error); ok {
		e.Cause = err
	}
	return e
}

func captureStack() string {
	// 8 KiB is enough for most stack traces. runtime.Stack truncates
	// gracefully if the buffer is too small.
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
