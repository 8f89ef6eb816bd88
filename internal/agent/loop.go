package agent

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"solana-treasury-agent/internal/observability"
)

// Run executes ticks on the configured interval until ctx is done. One
// tick runs at a time: a timer fire landing while the previous tick is
// still in flight is skipped and counted, never queued. The first tick
// runs immediately. On shutdown the in-flight tick finishes before Run
// returns.
func (a *Agent) Run(ctx context.Context) error {
	var (
		wg      sync.WaitGroup
		running atomic.Bool
	)

	launch := func() {
		if !running.CompareAndSwap(false, true) {
			observability.RecordOverlapSkip()
			a.log.Warn("tick still running, skipping timer fire")
			return
		}
		// Detach from the parent so shutdown does not abort a tick
		// mid-transaction; the timeout still bounds it.
		tickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*a.cfg.TickInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer running.Store(false)
			defer cancel()
			if err := a.Tick(tickCtx); err != nil {
				a.log.WithError(err).Error("tick failed")
			}
		}()
	}

	launch()

	ticker := time.NewTicker(a.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutting down, waiting for in-flight tick")
			wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			launch()
		}
	}
}
