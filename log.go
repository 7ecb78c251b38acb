package mthread

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/baxromumarov/mthread/internal/logging"
)

var (
	pkgLogger   atomic.Pointer[zerolog.Logger]
	defaultOnce sync.Once
)

// SetLogger replaces the logger used for thread diagnostics.
func SetLogger(l zerolog.Logger) {
	pkgLogger.Store(&l)
}

// Logger returns the logger used for thread diagnostics. Unless replaced
// with [SetLogger], it writes to stderr and is configured from the
// MTHREAD_LOG_* environment variables.
func Logger() zerolog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return *l
	}
	defaultOnce.Do(func() {
		l := logging.New(logging.FromEnv())
		pkgLogger.CompareAndSwap(nil, &l)
	})
	return *pkgLogger.Load()
}
