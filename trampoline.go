package mthread

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// threadData is the startup payload handed to a new thread. The tid slot and
// the latch are cleared as soon as the thread has published its id, so the
// creator's handle is never written again.
type threadData struct {
	fn     Func
	name   string
	tid    *atomic.Int32
	latch  *CountDownLatch
	onExit func(Identity)
	abort  func()
	log    zerolog.Logger
}

// run is the entry point of every managed thread.
func (d *threadData) run() {
	ctx := enterThread()
	defer leaveThread(ctx)

	d.tid.Store(int32(ctx.tid))
	d.tid = nil
	d.latch.CountDown()
	d.latch = nil

	ctx.name = d.name
	if ctx.name == "" {
		ctx.name = defaultThreadName
	}
	if err := setOSThreadName(ctx.name); err != nil {
		d.log.Debug().Err(err).Str("thread", ctx.name).Msg("set os thread name")
	}

	fn := d.fn
	d.fn = nil

	// runtime.Goexit unwinds past invoke without returning or panicking.
	returned := false
	defer func() {
		if !returned {
			d.finish(ctx, outcome{kind: outcomeGoexit})
		}
	}()
	out := invoke(fn)
	returned = true
	d.finish(ctx, out)
}

// finish applies the failure policy to the outcome of the thread's Func.
func (d *threadData) finish(ctx *threadContext, out outcome) {
	name := ctx.name
	if out.kind == outcomeFinished {
		ctx.name = NameFinished
	} else {
		ctx.name = NameCrashed
	}

	switch out.kind {
	case outcomeException:
		d.log.WithLevel(zerolog.FatalLevel).
			Str("thread", name).
			Int("tid", ctx.tid).
			Str("reason", out.exc.Message).
			Str("stack", out.exc.Stack).
			Msg("exception caught in thread")
	case outcomeError:
		d.log.WithLevel(zerolog.FatalLevel).
			Str("thread", name).
			Int("tid", ctx.tid).
			Str("reason", out.err.Error()).
			Msg("error caught in thread")
	case outcomeGoexit:
		d.log.WithLevel(zerolog.FatalLevel).
			Str("thread", name).
			Int("tid", ctx.tid).
			Msg("thread exited without returning")
	case outcomeUnknown:
		d.log.Error().
			Str("thread", name).
			Int("tid", ctx.tid).
			Msg("unknown panic caught in thread")
	}

	if d.onExit != nil {
		d.onExit(ctx.identity())
	}

	switch out.kind {
	case outcomeException, outcomeError, outcomeGoexit:
		d.abort()
	case outcomeUnknown:
		panic(out.value)
	}
}
