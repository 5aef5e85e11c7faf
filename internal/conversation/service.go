// ABOUTME: Conversation service relaying one chat turn through the assistant service
// ABOUTME: Thread, message, run, bounded wait, reply, log entry, then best-effort lead dispatch

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/chatrelay/internal/assistant"
	"github.com/2389/chatrelay/internal/lead"
	"github.com/2389/chatrelay/internal/store"
)

// ErrEmptyMessage is returned when the chat message is blank.
var ErrEmptyMessage = errors.New("message is required")

// ErrNoReply is returned when the finished thread has no text to reply with.
var ErrNoReply = errors.New("assistant produced no text reply")

// UpstreamError wraps a failure from the assistant service with the step that failed.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("assistant %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// LeadDispatcher receives extracted leads. Dispatch must not block on delivery.
type LeadDispatcher interface {
	Dispatch(threadID, info string) bool
	Wait(ctx context.Context) error
}

// Config wires the service to its collaborators.
type Config struct {
	AssistantID string
	Client      assistant.Client
	Poller      *assistant.Poller     // defaults to 1s interval, 120 attempts
	Log         store.ConversationLog // defaults to a bounded in-memory log
	Extractor   *lead.Extractor       // defaults to lead.New()
	Dispatcher  LeadDispatcher        // nil disables lead notifications
}

// Service handles chat turns. It is safe for concurrent use.
type Service struct {
	assistantID string
	client      assistant.Client
	poller      *assistant.Poller
	log         store.ConversationLog
	extractor   *lead.Extractor
	dispatcher  LeadDispatcher
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a conversation Service.
func New(cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		assistantID: cfg.AssistantID,
		client:      cfg.Client,
		poller:      cfg.Poller,
		log:         cfg.Log,
		extractor:   cfg.Extractor,
		dispatcher:  cfg.Dispatcher,
		logger:      logger.With("component", "conversation"),
		now:         time.Now,
	}
	if s.poller == nil {
		s.poller = assistant.NewPoller(cfg.Client, time.Second, 120, logger)
	}
	if s.log == nil {
		s.log = store.NewMemoryLog(1000)
	}
	if s.extractor == nil {
		s.extractor = lead.New()
	}
	return s
}

// ChatRequest is one user turn. An empty ThreadID starts a new conversation.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId,omitempty"`
}

// ChatResponse carries the assistant's reply and the thread to continue on.
type ChatResponse struct {
	Reply    string `json:"reply"`
	ThreadID string `json:"threadId"`
}

// HandleChat runs one turn: it posts the message, waits for the assistant's run,
// records the exchange, and hands any lead found in the thread to the dispatcher.
// Lead handling never causes an error; the reply is returned regardless.
func (s *Service) HandleChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	threadID := req.ThreadID
	if threadID == "" {
		id, err := s.client.CreateThread(ctx)
		if err != nil {
			return nil, &UpstreamError{Op: "create thread", Err: err}
		}
		threadID = id
		s.logger.Debug("thread created", "thread_id", threadID)
	}

	if err := s.client.AddMessage(ctx, threadID, assistant.RoleUser, req.Message); err != nil {
		return nil, &UpstreamError{Op: "add message", Err: err}
	}

	run, err := s.client.CreateRun(ctx, threadID, s.assistantID)
	if err != nil {
		return nil, &UpstreamError{Op: "create run", Err: err}
	}

	if _, err := s.poller.Wait(ctx, threadID, run.ID); err != nil {
		return nil, &UpstreamError{Op: "wait for run", Err: err}
	}

	messages, err := s.client.ListMessages(ctx, threadID)
	if err != nil {
		return nil, &UpstreamError{Op: "list messages", Err: err}
	}
	if len(messages) == 0 || messages[0].Text == "" {
		return nil, &UpstreamError{Op: "list messages", Err: ErrNoReply}
	}
	reply := messages[0].Text

	s.appendEntry(&store.LogEntry{
		ID:        uuid.New().String(),
		Timestamp: s.now(),
		ThreadID:  threadID,
		Question:  req.Message,
		Answer:    reply,
	})

	s.dispatchLead(threadID, messages)

	s.logger.Info("chat turn completed",
		"thread_id", threadID,
		"run_id", run.ID,
		"new_thread", req.ThreadID == "")

	return &ChatResponse{Reply: reply, ThreadID: threadID}, nil
}

// History returns the conversation log in completion order.
func (s *Service) History(ctx context.Context) ([]*store.LogEntry, error) {
	return s.log.All(ctx)
}

// Wait blocks until lead notifications already handed off have finished.
func (s *Service) Wait(ctx context.Context) error {
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Wait(ctx)
}

// appendEntry records the exchange with a separate timeout context.
// The reply has already been computed, so a failure here is only logged.
func (s *Service) appendEntry(entry *store.LogEntry) {
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.log.Append(saveCtx, entry); err != nil {
		s.logger.Error("failed to append log entry",
			"error", err,
			"entry_id", entry.ID,
			"thread_id", entry.ThreadID)
	}
}

// dispatchLead scans the whole thread for lead fragments. Messages are joined
// as listed, newest first, so the latest answers lead the notification.
func (s *Service) dispatchLead(threadID string, newestFirst []assistant.Message) {
	if s.dispatcher == nil {
		return
	}

	texts := make([]string, 0, len(newestFirst))
	for _, m := range newestFirst {
		if m.Text != "" {
			texts = append(texts, m.Text)
		}
	}

	info, ok := s.extractor.Extract(strings.Join(texts, "\n"))
	if !ok {
		return
	}
	if s.dispatcher.Dispatch(threadID, info) {
		s.logger.Info("lead detected", "thread_id", threadID)
	}
}
