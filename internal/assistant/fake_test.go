// ABOUTME: In-memory Client used by assistant package tests
// ABOUTME: Returns scripted run statuses and records calls

package assistant

import (
	"context"
	"sync"
)

type scriptedClient struct {
	mu       sync.Mutex
	statuses []RunStatus
	lastErr  *RunError
	getErr   error
	nilRun   bool
	getCalls int
}

func (c *scriptedClient) CreateThread(ctx context.Context) (string, error) {
	return "thread-1", nil
}

func (c *scriptedClient) AddMessage(ctx context.Context, threadID string, role Role, text string) error {
	return nil
}

func (c *scriptedClient) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	return &Run{ID: "run-1", ThreadID: threadID, Status: RunStatusQueued}, nil
}

func (c *scriptedClient) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.getCalls++
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.nilRun {
		return nil, nil
	}

	status := RunStatusInProgress
	if len(c.statuses) > 0 {
		status = c.statuses[0]
		if len(c.statuses) > 1 {
			c.statuses = c.statuses[1:]
		}
	}
	return &Run{ID: runID, ThreadID: threadID, Status: status, LastError: c.lastErr}, nil
}

func (c *scriptedClient) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	return nil, nil
}

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getCalls
}
