package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// SweepScheduler drives the alert sweeper on a fixed interval. Ticks never
// overlap: a tick that fires while a sweep is still running is skipped via
// an atomic in-progress flag.
type SweepScheduler struct {
	sweeper  *AlertSweeper
	interval time.Duration
	running  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
}

func NewSweepScheduler(sweeper *AlertSweeper, interval time.Duration) *SweepScheduler {
	return &SweepScheduler{
		sweeper:  sweeper,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Call at most once.
func (scheduler *SweepScheduler) Start() {
	go func() {
		defer close(scheduler.done)

		ticker := time.NewTicker(scheduler.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				scheduler.Tick(context.Background())
			case <-scheduler.stop:
				return
			}
		}
	}()
	slog.Info("alert sweep scheduler started", "interval", scheduler.interval)
}

// Stop ends the ticker loop and waits for it to exit. A sweep already in
// flight finishes on its own.
func (scheduler *SweepScheduler) Stop() {
	close(scheduler.stop)
	<-scheduler.done
	slog.Info("alert sweep scheduler stopped")
}

// Tick runs a single sweep unless one is already in progress. Returns
// whether the sweep ran. Failures are logged, never propagated: a bad
// sweep must not take the scheduler down.
func (scheduler *SweepScheduler) Tick(ctx context.Context) bool {
	if !scheduler.running.CompareAndSwap(false, true) {
		slog.Warn("skipping sweep tick, previous sweep still running")
		return false
	}
	defer scheduler.running.Store(false)

	stats, err := scheduler.sweeper.Run(ctx, time.Now())
	if err != nil {
		slog.Error("alert sweep failed", "error", err)
		return true
	}
	slog.Info("alert sweep finished", "scanned", stats.ScannedItems, "alerts", stats.AlertsCreated)
	return true
}
