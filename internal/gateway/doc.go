// Package gateway serves the chat relay over HTTP.
//
// # Overview
//
// New turns a config.Config into a running service: it opens the conversation
// history store, builds the OpenAI Assistants client and the notification
// channels, and wires them into a conversation.Service behind an http.Server.
//
// # HTTP API
//
//	POST /chat          {"message", "threadId"?} -> {"reply", "threadId"}
//	GET  /logs          transcript page, Basic auth (only when viewer credentials are set)
//	GET  /health        liveness, always "OK"
//	GET  /health/ready  503 once shutdown has begun
//
// Chat errors are returned as {"error": "..."}: 400 for malformed bodies and
// empty messages, 405 for other methods, 500 for everything else. The cause of a
// 500 is logged with the request id and never sent to the client.
//
// Every response carries X-Request-ID. CORS headers are added for origins in
// cors.allowed_origins.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	err = gw.Run(ctx) // blocks until ctx is canceled
//
// Run listens on server.http_addr, or on a tsnet node when tailscale.enabled
// is set (port 80, or 443 with tailscale.https / tailscale.funnel). On
// cancellation it shuts the HTTP server down, waits for in-flight lead
// notifications, and closes the history store.
package gateway
