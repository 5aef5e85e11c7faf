// ABOUTME: Client interface and types for the assistant-execution service
// ABOUTME: Threads carry ordered messages; runs execute the assistant against a thread

package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusIncomplete     RunStatus = "incomplete"
	RunStatusExpired        RunStatus = "expired"
)

// Terminal reports whether the run can no longer change state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusCancelled, RunStatusFailed, RunStatusIncomplete, RunStatusExpired:
		return true
	default:
		return false
	}
}

// ErrRunTimeout is returned when a run does not complete within the allowed polling attempts.
var ErrRunTimeout = errors.New("run did not complete in time")

// RunFailedError is returned when a run reaches a terminal status other than completed.
type RunFailedError struct {
	RunID   string
	Status  RunStatus
	Code    string
	Message string
}

func (e *RunFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("run %s ended with status %s: %s", e.RunID, e.Status, e.Message)
	}
	return fmt.Sprintf("run %s ended with status %s", e.RunID, e.Status)
}

// Run is one execution of the assistant against a thread.
type Run struct {
	ID        string
	ThreadID  string
	Status    RunStatus
	LastError *RunError
}

// RunError carries the service's explanation for a failed run.
type RunError struct {
	Code    string
	Message string
}

// Message is a thread message reduced to its first text block.
type Message struct {
	ID        string
	Role      Role
	Text      string
	CreatedAt time.Time
}

// Client is the subset of the assistant service chatrelay relies on.
type Client interface {
	CreateThread(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, threadID string, role Role, text string) error
	CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)

	// ListMessages returns the thread's messages, newest first.
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
}
