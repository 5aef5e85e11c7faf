// ABOUTME: HTTP Basic authentication middleware for the transcript viewer
// ABOUTME: Missing credentials get a 401 challenge; wrong credentials get a 403

package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// BasicAuth creates an HTTP middleware that gates next behind the credential pair.
// A missing or malformed Authorization header yields 401 with a Basic challenge
// for realm. Credentials that do not match yield 403.
func BasicAuth(verifier Verifier, realm string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")
	challenge := `Basic realm="` + strings.ReplaceAll(realm, `"`, `\"`) + `"`

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			if !verifier.Verify(username, password) {
				logger.Warn("viewer access denied", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "access denied", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), username)))
		})
	}
}
