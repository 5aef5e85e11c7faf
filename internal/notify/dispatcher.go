// ABOUTME: Asynchronous best-effort delivery of lead notifications
// ABOUTME: Detaches from the request, bounds each delivery, and suppresses repeats per thread

package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2389/chatrelay/internal/dedupe"
)

// DefaultTimeout bounds a single delivery when none is configured.
const DefaultTimeout = 30 * time.Second

// DispatcherConfig controls delivery behaviour.
type DispatcherConfig struct {
	Timeout time.Duration

	// DedupeTTL is how long a (thread, lead) pair stays suppressed after being
	// delivered. Zero disables suppression.
	DedupeTTL     time.Duration
	DedupeMaxKeys int
}

// Dispatcher hands leads to a Notifier without blocking the caller.
// Delivery failures are logged and counted but never returned.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	window   *dedupe.Window // nil when suppression is disabled
	logger   *slog.Logger

	wg         sync.WaitGroup
	sent       atomic.Int64
	failures   atomic.Int64
	suppressed atomic.Int64
}

// NewDispatcher creates a Dispatcher. A nil notifier makes every Dispatch a no-op.
func NewDispatcher(notifier Notifier, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		logger:   logger.With("component", "notify"),
	}
	if cfg.DedupeTTL > 0 {
		d.window = dedupe.New(cfg.DedupeTTL, cfg.DedupeMaxKeys)
	}
	return d
}

// Dispatch schedules delivery of info for threadID and returns immediately.
// It reports whether a delivery was scheduled.
func (d *Dispatcher) Dispatch(threadID, info string) bool {
	if d.notifier == nil || info == "" {
		return false
	}
	if d.window != nil && !d.window.Claim(threadID, info) {
		d.suppressed.Add(1)
		d.logger.Debug("lead already notified", "thread_id", threadID)
		return false
	}

	d.wg.Add(1)
	go d.deliver(threadID, info)
	return true
}

// deliver runs with its own timeout so it outlives the request that found the lead.
func (d *Dispatcher) deliver(threadID, info string) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	if err := d.notifier.Notify(ctx, info); err != nil {
		d.failures.Add(1)
		// Let the next turn of this thread try again.
		if d.window != nil {
			d.window.Release(threadID, info)
		}
		d.logger.Error("lead notification failed",
			"thread_id", threadID,
			"duration", time.Since(start),
			"error", err)
		return
	}

	d.sent.Add(1)
	d.logger.Info("lead notification sent", "thread_id", threadID, "duration", time.Since(start))
}

// Wait blocks until every scheduled delivery has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for in-flight deliveries and releases the dedupe window.
func (d *Dispatcher) Close(ctx context.Context) error {
	err := d.Wait(ctx)
	if d.window != nil {
		d.window.Close()
	}
	return err
}

// Sent returns the number of successful deliveries.
func (d *Dispatcher) Sent() int64 { return d.sent.Load() }

// Failures returns the number of failed deliveries.
func (d *Dispatcher) Failures() int64 { return d.failures.Load() }

// Suppressed returns the number of leads skipped as duplicates.
func (d *Dispatcher) Suppressed() int64 { return d.suppressed.Load() }
