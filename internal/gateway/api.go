// ABOUTME: HTTP handler for the chat endpoint
// ABOUTME: Decodes {message, threadId}, runs the turn, and maps errors to status codes

package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/2389/chatrelay/internal/conversation"
)

// maxChatBodyBytes bounds the size of a POST /chat body.
const maxChatBodyBytes = 64 << 10

// handleChat handles POST /chat.
//
// Request:  {"message": "...", "threadId": "..."}   (threadId optional)
// Response: {"reply": "...", "threadId": "..."}
//
// Any failure after validation is reported as a generic 500; the cause is
// only logged.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := parseChatRequest(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := g.conversation.HandleChat(r.Context(), req)
	if errors.Is(err, conversation.ErrEmptyMessage) {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		g.logger.Error("chat turn failed",
			"error", err,
			"thread_id", req.ThreadID,
			"request_id", requestIDFromContext(r.Context()))
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// parseChatRequest decodes a ChatRequest from the given reader.
// Message presence is checked by the conversation service.
func parseChatRequest(r io.Reader) (*conversation.ChatRequest, error) {
	var req conversation.ChatRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New("request body too large")
		}
		return nil, errors.New("invalid JSON body")
	}
	return &req, nil
}
