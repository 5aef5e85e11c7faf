// ABOUTME: Bounded wait-for-completion loop over an asynchronous run
// ABOUTME: Detects terminal failures and gives up after a fixed number of attempts

package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Poller waits for runs to finish by retrieving their status at a fixed interval.
type Poller struct {
	client      Client
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewPoller creates a Poller. maxAttempts below one is treated as one.
func NewPoller(client Client, interval time.Duration, maxAttempts int, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Poller{
		client:      client,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "poller"),
	}
}

// Wait blocks until the run completes. It returns a *RunFailedError when the run
// reaches another terminal status, ErrRunTimeout once maxAttempts retrievals have
// not seen completion, or the context error if ctx is done first.
func (p *Poller) Wait(ctx context.Context, threadID, runID string) (*Run, error) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		run, err := p.client.GetRun(ctx, threadID, runID)
		if err != nil {
			return nil, fmt.Errorf("retrieving run status: %w", err)
		}
		if run == nil {
			return nil, fmt.Errorf("retrieving run status: no run returned for %s", runID)
		}

		p.logger.Debug("run status", "thread_id", threadID, "run_id", runID, "status", run.Status, "attempt", attempt)

		if run.Status == RunStatusCompleted {
			return run, nil
		}
		if run.Status.Terminal() {
			failed := &RunFailedError{RunID: runID, Status: run.Status}
			if run.LastError != nil {
				failed.Code = run.LastError.Code
				failed.Message = run.LastError.Message
			}
			return nil, failed
		}
		if attempt >= p.maxAttempts {
			p.logger.Warn("run still pending after max attempts",
				"thread_id", threadID,
				"run_id", runID,
				"status", run.Status,
				"attempts", attempt)
			return nil, fmt.Errorf("%w: status %s after %d attempts", ErrRunTimeout, run.Status, attempt)
		}

		timer.Reset(p.interval)
	}
}
