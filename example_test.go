package mthread_test

import (
	"errors"
	"fmt"

	"github.com/baxromumarov/mthread"
)

func ExampleNew() {
	th := mthread.New(func() error {
		fmt.Println("running on", mthread.CurrentName())
		return nil
	}, mthread.WithName("io-loop"))

	if err := th.Start(); err != nil {
		fmt.Println("start:", err)
		return
	}
	fmt.Println("tid published:", th.TID() > 0)
	_ = th.Join()
	// Unordered output:
	// running on io-loop
	// tid published: true
}

func ExampleWithOnExit() {
	th := mthread.New(func() error { return nil },
		mthread.WithName("short-lived"),
		mthread.WithOnExit(func(id mthread.Identity) {
			fmt.Println("exit name:", id.Name)
		}),
	)
	_ = th.Start()
	_ = th.Join()
	// Output: exit name: finished
}

func ExampleThread_Join_self() {
	var th *mthread.Thread
	th = mthread.New(func() error {
		fmt.Println(errors.Is(th.Join(), mthread.ErrJoinSelf))
		return nil
	})
	_ = th.Start()
	_ = th.Join()
	// Output: true
}

func ExampleNewCountDownLatch() {
	ready := mthread.NewCountDownLatch(3)
	for range 3 {
		go ready.CountDown()
	}
	ready.Wait()
	fmt.Println("remaining:", ready.Count())
	// Output: remaining: 0
}
