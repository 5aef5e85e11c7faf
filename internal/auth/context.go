// ABOUTME: Request context helpers for the authenticated viewer identity
// ABOUTME: BasicAuth stores the username; handlers read it with ViewerFromContext

package auth

import (
	"context"
)

type viewerContextKey struct{}

// WithViewer returns a new context carrying the authenticated username.
func WithViewer(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, viewerContextKey{}, username)
}

// ViewerFromContext returns the authenticated username, or "" if none.
func ViewerFromContext(ctx context.Context) string {
	username, _ := ctx.Value(viewerContextKey{}).(string)
	return username
}
