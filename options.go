package mthread

import (
	"os"

	"github.com/rs/zerolog"
)

// crashExitCode is the status a shell reports for a process killed by SIGABRT.
const crashExitCode = 134

type config struct {
	name   string
	onExit func(Identity)
	abort  func()
	logger *zerolog.Logger
}

// Option configures a [Thread].
type Option func(*config)

func defaultConfig() config {
	return config{
		abort: func() { os.Exit(crashExitCode) },
	}
}

// WithName sets the display name of the thread. An empty name keeps the
// default "Thread<N>".
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithOnExit registers a hook invoked on the thread after its Func has
// completed and its terminal name ("finished" or "crashed") is set. On the
// crash paths the hook runs before the process is aborted.
// Panics if fn is nil.
func WithOnExit(fn func(Identity)) Option {
	if fn == nil {
		panic("mthread: WithOnExit requires non-nil callback")
	}
	return func(c *config) {
		c.onExit = fn
	}
}

// WithAbort replaces the function that terminates the process when the
// thread's Func fails. The default exits with status 134.
// Panics if fn is nil.
func WithAbort(fn func()) Option {
	if fn == nil {
		panic("mthread: WithAbort requires non-nil callback")
	}
	return func(c *config) {
		c.abort = fn
	}
}

// WithLogger sets the logger used for the thread's diagnostics instead of
// the package logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = &l
	}
}
