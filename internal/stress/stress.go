// Package stress drives managed threads through repeated lifecycles and
// reports what the creators observed.
package stress

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/baxromumarov/mthread"
)

// Mode selects the workload a run performs.
type Mode string

const (
	// ModeCycles starts and joins one thread per cycle.
	ModeCycles Mode = "cycles"
	// ModePool submits one task per cycle to a pool of Workers threads.
	ModePool Mode = "pool"
	// ModeDetach starts and closes one thread per cycle.
	ModeDetach Mode = "detach"
)

// Config describes one stress run.
type Config struct {
	Mode       Mode
	Workers    int
	Cycles     int
	NamePrefix string
	QueueSize  int
}

// DefaultConfig runs 1000 start/join cycles across 8 workers.
func DefaultConfig() Config {
	return Config{
		Mode:       ModeCycles,
		Workers:    8,
		Cycles:     1000,
		NamePrefix: "stress-",
	}
}

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeCycles, ModePool, ModeDetach:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Cycles <= 0 {
		return fmt.Errorf("cycles must be positive, got %d", c.Cycles)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue_size must be non-negative, got %d", c.QueueSize)
	}
	return nil
}

// Report summarises one run.
type Report struct {
	Mode      Mode
	Started   int64
	ZeroTIDs  int64 // Start returned before a tid was visible
	Mismatch  int64 // creator and child disagreed on the tid
	Tracked   int64 // NumTracked after the run
	Elapsed   time.Duration
	PoolStats mthread.PoolStats
}

// OK reports whether every creator saw the tid its thread published.
func (r Report) OK() bool {
	return r.ZeroTIDs == 0 && r.Mismatch == 0
}

// Run executes cfg and returns its report. Workers run concurrently; each
// performs its share of the cycles.
func Run(ctx context.Context, cfg Config, log zerolog.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	log.Info().
		Str("mode", string(cfg.Mode)).
		Int("workers", cfg.Workers).
		Int("cycles", cfg.Cycles).
		Msg("stress run starting")

	start := time.Now()
	var (
		rep Report
		err error
	)
	switch cfg.Mode {
	case ModePool:
		rep, err = runPool(ctx, cfg)
	default:
		rep, err = runCycles(ctx, cfg)
	}
	rep.Mode = cfg.Mode
	rep.Elapsed = time.Since(start)
	rep.Tracked = mthread.NumTracked()

	if err != nil {
		log.Error().Err(err).Msg("stress run failed")
		return rep, err
	}
	log.Info().
		Int64("started", rep.Started).
		Int64("zero_tids", rep.ZeroTIDs).
		Int64("mismatch", rep.Mismatch).
		Dur("elapsed", rep.Elapsed).
		Msg("stress run finished")
	return rep, nil
}

func share(total, workers, w int) int {
	n := total / workers
	if w < total%workers {
		n++
	}
	return n
}

func runCycles(ctx context.Context, cfg Config) (Report, error) {
	var started, zeros, mismatch atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := range cfg.Workers {
		g.Go(func() error {
			for i := range share(cfg.Cycles, cfg.Workers, w) {
				if err := ctx.Err(); err != nil {
					return err
				}

				seen := make(chan int, 1)
				th := mthread.New(func() error {
					seen <- mthread.CurrentTID()
					return nil
				}, mthread.WithName(fmt.Sprintf("%s%d-%d", cfg.NamePrefix, w, i)))
				if err := th.Start(); err != nil {
					return err
				}
				started.Add(1)

				tid := th.TID()
				if tid == 0 {
					zeros.Add(1)
				}

				if cfg.Mode == ModeDetach {
					if err := th.Close(); err != nil {
						return err
					}
				} else if err := th.Join(); err != nil {
					return err
				}
				if <-seen != tid {
					mismatch.Add(1)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	return Report{
		Started:  started.Load(),
		ZeroTIDs: zeros.Load(),
		Mismatch: mismatch.Load(),
	}, err
}

func runPool(ctx context.Context, cfg Config) (Report, error) {
	opts := []mthread.PoolOption{mthread.WithNamePrefix(cfg.NamePrefix)}
	if cfg.QueueSize > 0 {
		opts = append(opts, mthread.WithQueueSize(cfg.QueueSize))
	}

	p, err := mthread.NewPool(cfg.Workers, opts...)
	if err != nil {
		return Report{}, err
	}

	var unnamed atomic.Int64
	for range cfg.Cycles {
		err = p.Submit(ctx, func() error {
			if mthread.CurrentTID() <= 0 || mthread.CurrentName() == "" {
				unnamed.Add(1)
			}
			return nil
		})
		if err != nil {
			break
		}
	}

	closeErr := p.Close()
	rep := Report{
		Started:   int64(cfg.Workers),
		Mismatch:  unnamed.Load(),
		PoolStats: p.Stats(),
	}
	if err != nil {
		return rep, err
	}
	return rep, closeErr
}
