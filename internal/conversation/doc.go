// Package conversation relays chat turns to the assistant service.
//
// # Chat Turn
//
//	svc := conversation.New(conversation.Config{...}, logger)
//	resp, err := svc.HandleChat(ctx, &conversation.ChatRequest{Message: "Bonjour"})
//
// HandleChat performs, in order:
//
//  1. Reuse the supplied thread id, or create a thread
//  2. Append the user message
//  3. Start a run with the configured assistant id
//  4. Wait for the run with a bounded Poller
//  5. List the thread's messages; the newest one's text is the reply
//  6. Append a LogEntry to the ConversationLog
//  7. Extract leads from every message in the thread and hand them to the
//     LeadDispatcher
//
// Steps 1 to 5 return *UpstreamError on failure, naming the step. Steps 6 and 7
// happen after the reply is known and only log their failures.
//
// The supplied thread id is not validated locally; an unknown id surfaces as
// an UpstreamError from the assistant service.
package conversation
