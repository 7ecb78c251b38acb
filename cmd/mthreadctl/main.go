// Command mthreadctl exercises managed threads: it runs start/join, detach
// or pool workloads and reports whether every creator observed a published
// kernel id.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/baxromumarov/mthread"
	"github.com/baxromumarov/mthread/internal/logging"
	"github.com/baxromumarov/mthread/internal/stress"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "mthreadctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("mthreadctl", flag.ContinueOnError)
	path := fs.String("config", "", "path to a TOML config file")
	mode := fs.String("mode", "", "override mode: cycles, detach or pool")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := defaultAppConfig()
	if *path != "" {
		loaded, err := loadConfig(*path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logging.ApplyEnvOverrides(&cfg.Log)
	if *mode != "" {
		cfg.Stress.Mode = stress.Mode(*mode)
	}

	log := logging.New(cfg.Log)
	mthread.SetLogger(log)
	if cfg.MaxThreads > 0 {
		mthread.SetMaxThreads(cfg.MaxThreads)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := stress.Run(ctx, cfg.Stress, log)
	if err != nil {
		return err
	}

	fmt.Printf("mode=%s started=%d zero_tids=%d mismatch=%d tracked=%d elapsed=%s\n",
		rep.Mode, rep.Started, rep.ZeroTIDs, rep.Mismatch, rep.Tracked, rep.Elapsed)
	if rep.Mode == stress.ModePool {
		s := rep.PoolStats
		fmt.Printf("pool threads=%d submitted=%d completed=%d errored=%d\n",
			s.Threads, s.Submitted, s.Completed, s.Errored)
	}
	if !rep.OK() {
		return fmt.Errorf("lifecycle contract violated")
	}
	return nil
}
