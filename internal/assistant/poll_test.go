// ABOUTME: Tests for the bounded run poller
// ABOUTME: Covers completion, terminal failures, timeouts, and cancellation

package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_WaitsForCompletion(t *testing.T) {
	client := &scriptedClient{statuses: []RunStatus{
		RunStatusQueued,
		RunStatusInProgress,
		RunStatusCompleted,
	}}
	p := NewPoller(client, time.Millisecond, 10, nil)

	run, err := p.Wait(context.Background(), "thread-1", "run-1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, 3, client.calls())
}

func TestPoller_TerminalFailureStatuses(t *testing.T) {
	for _, status := range []RunStatus{RunStatusFailed, RunStatusCancelled, RunStatusExpired, RunStatusIncomplete} {
		t.Run(string(status), func(t *testing.T) {
			client := &scriptedClient{
				statuses: []RunStatus{RunStatusInProgress, status},
				lastErr:  &RunError{Code: "server_error", Message: "boom"},
			}
			p := NewPoller(client, time.Millisecond, 10, nil)

			_, err := p.Wait(context.Background(), "thread-1", "run-1")
			require.Error(t, err)

			var failed *RunFailedError
			require.True(t, errors.As(err, &failed))
			assert.Equal(t, status, failed.Status)
			assert.Equal(t, "server_error", failed.Code)
			assert.Contains(t, err.Error(), "boom")
			assert.Equal(t, 2, client.calls())
		})
	}
}

func TestPoller_TimesOutAfterMaxAttempts(t *testing.T) {
	client := &scriptedClient{statuses: []RunStatus{RunStatusInProgress}}
	p := NewPoller(client, time.Millisecond, 5, nil)

	_, err := p.Wait(context.Background(), "thread-1", "run-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunTimeout)
	assert.Equal(t, 5, client.calls())
}

func TestPoller_RequiresActionIsNotTerminal(t *testing.T) {
	client := &scriptedClient{statuses: []RunStatus{RunStatusRequiresAction}}
	p := NewPoller(client, time.Millisecond, 3, nil)

	_, err := p.Wait(context.Background(), "thread-1", "run-1")
	assert.ErrorIs(t, err, ErrRunTimeout)
}

func TestPoller_ContextCancelled(t *testing.T) {
	client := &scriptedClient{statuses: []RunStatus{RunStatusInProgress}}
	p := NewPoller(client, time.Hour, 10, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Wait(ctx, "thread-1", "run-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, client.calls())
}

func TestPoller_UpstreamErrorStopsPolling(t *testing.T) {
	client := &scriptedClient{getErr: errors.New("rate limited")}
	p := NewPoller(client, time.Millisecond, 10, nil)

	_, err := p.Wait(context.Background(), "thread-1", "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, 1, client.calls())
}

func TestNewPoller_ClampsAttempts(t *testing.T) {
	client := &scriptedClient{statuses: []RunStatus{RunStatusQueued}}
	p := NewPoller(client, time.Millisecond, 0, nil)

	_, err := p.Wait(context.Background(), "thread-1", "run-1")
	assert.ErrorIs(t, err, ErrRunTimeout)
	assert.Equal(t, 1, client.calls())
}

func TestRunStatus_Terminal(t *testing.T) {
	assert.True(t, RunStatusCompleted.Terminal())
	assert.True(t, RunStatusFailed.Terminal())
	assert.True(t, RunStatusExpired.Terminal())
	assert.False(t, RunStatusQueued.Terminal())
	assert.False(t, RunStatusInProgress.Terminal())
	assert.False(t, RunStatusCancelling.Terminal())
}

func TestPoller_MissingRunIsError(t *testing.T) {
	client := &scriptedClient{nilRun: true}
	p := NewPoller(client, time.Millisecond, 10, nil)

	run, err := p.Wait(context.Background(), "thread-1", "run-1")
	require.Error(t, err)
	assert.Nil(t, run)
	assert.Contains(t, err.Error(), "no run returned for run-1")
	assert.Equal(t, 1, client.calls())
}
