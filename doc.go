// Package mthread runs functions on dedicated, named OS threads with a
// strict lifecycle contract.
//
// Most Go code should use goroutines. mthread is for the code that cares
// which OS thread it runs on: code that calls thread-affine C libraries,
// sets per-thread kernel attributes, or must show up under a stable name in
// ps, top and /proc.
//
// # Starting Threads
//
// [New] wraps a [Func] in a [Thread] handle; [Thread.Start] creates the OS
// thread and does not return until the thread has published its kernel id:
//
//	th := mthread.New(func() error {
//	    return serve()
//	}, mthread.WithName("io-loop"))
//	if err := th.Start(); err != nil {
//	    return err
//	}
//	fmt.Println(th.Name(), th.TID())
//	_ = th.Join()
//
// A thread without [WithName] is called "Thread<N>", where N counts every
// Thread the process has constructed ([NumCreated]).
//
// # Lifecycle
//
// Start may be called once. [Thread.Join] may be called once, after Start,
// and blocks until the thread exits. A handle that is started but never
// joined must not leak: [Thread.Close] detaches it without blocking, and a
// handle that becomes unreachable is detached by the garbage collector.
// [NumTracked] reports the native threads whose resources are still held and
// [SetMaxThreads] caps them; Start fails with [ErrThreadLimit] at the cap.
//
// Contract violations (starting twice, joining before start or twice) panic.
//
// # Failure Policy
//
// A Func that fails is treated as a defect, never as a recoverable result.
// Returning or panicking with an [*Exception] logs the thread name, message
// and captured stack trace, then aborts the process. Any other error logs
// the name and message, then aborts. A panic with a non-error value is
// logged as an unknown panic and re-raised. A Func that ends with
// [runtime.Goexit] never returns a result and also aborts. [WithAbort] replaces the abort
// function and [WithOnExit] observes the thread's terminal name
// ([NameFinished] or [NameCrashed]).
//
// # Identity
//
// [CurrentIdentity], [CurrentTID] and [CurrentName] describe the calling
// thread. [IsMainThread] reports whether the caller runs on the process's
// initial thread; [AfterFork] re-arms that identity in a forked child.
//
// # Pools
//
// [Pool] runs submitted tasks on a fixed set of managed threads and collects
// task failures as [*ThreadError] values instead of aborting.
//
// # Logging
//
// Diagnostics go through a zerolog logger. The default writes to stderr and
// honours MTHREAD_LOG_LEVEL, MTHREAD_LOG_FORMAT (console or json),
// MTHREAD_LOG_TIMESTAMP and MTHREAD_LOG_NOCOLOR. [SetLogger] and
// [WithLogger] replace it.
package mthread
