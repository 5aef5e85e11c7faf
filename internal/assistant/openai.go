// ABOUTME: OpenAI Assistants implementation of Client using openai-go
// ABOUTME: Maps beta thread, message, and run calls onto the chatrelay types

package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// messageListLimit is the largest page the Assistants API returns.
const messageListLimit = 100

// OpenAIClient talks to the OpenAI Assistants (beta threads) API.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient creates a client authenticated with apiKey. An empty baseURL
// uses the public API.
func NewOpenAIClient(apiKey, baseURL string, opts ...option.RequestOption) *OpenAIClient {
	reqOpts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(apiKey))}
	if strings.TrimSpace(baseURL) != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimSpace(baseURL)))
	}
	reqOpts = append(reqOpts, opts...)
	return &OpenAIClient{client: openai.NewClient(reqOpts...)}
}

// CreateThread starts an empty thread and returns its id.
func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	return thread.ID, nil
}

// AddMessage appends a text message to the thread.
func (c *OpenAIClient) AddMessage(ctx context.Context, threadID string, role Role, text string) error {
	params := openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
	}
	if role == RoleAssistant {
		params.Role = openai.BetaThreadMessageNewParamsRoleAssistant
	}

	if _, err := c.client.Beta.Threads.Messages.New(ctx, threadID, params); err != nil {
		return fmt.Errorf("adding message: %w", err)
	}
	return nil
}

// CreateRun starts the assistant on the thread.
func (c *OpenAIClient) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	run, err := c.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	return convertRun(run), nil
}

// GetRun retrieves the current state of a run.
func (c *OpenAIClient) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	run, err := c.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return nil, fmt.Errorf("retrieving run: %w", err)
	}
	return convertRun(run), nil
}

// ListMessages returns the most recent page of messages, newest first.
func (c *OpenAIClient) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	page, err := c.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Limit: openai.Int(messageListLimit),
		Order: openai.BetaThreadMessageListParamsOrderDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	messages := make([]Message, 0, len(page.Data))
	for _, m := range page.Data {
		messages = append(messages, Message{
			ID:        m.ID,
			Role:      Role(m.Role),
			Text:      firstText(m.Content),
			CreatedAt: time.Unix(m.CreatedAt, 0).UTC(),
		})
	}
	return messages, nil
}

func convertRun(run *openai.Run) *Run {
	out := &Run{
		ID:       run.ID,
		ThreadID: run.ThreadID,
		Status:   RunStatus(run.Status),
	}
	if run.LastError.Message != "" || run.LastError.Code != "" {
		out.LastError = &RunError{
			Code:    string(run.LastError.Code),
			Message: run.LastError.Message,
		}
	}
	return out
}

// firstText returns the value of the first text content block.
func firstText(content []openai.MessageContentUnion) string {
	for _, block := range content {
		if block.Type == "text" {
			return block.Text.Value
		}
	}
	return ""
}
