// Package auth gates the transcript viewer behind one shared credential pair.
//
// Credentials are built once at startup from the configured username and either
// a plaintext password (hashed immediately with bcrypt) or a bcrypt hash. The
// username is compared as a SHA-256 digest with crypto/subtle, and the bcrypt
// comparison runs on every attempt.
//
// BasicAuth wraps an http.Handler:
//
//	creds, err := auth.NewCredentials(cfg.Viewer.Username, cfg.Viewer.Password, cfg.Viewer.PasswordHash)
//	mux.Handle("GET /logs", auth.BasicAuth(creds, "Logs Access", logger)(viewer))
//
// Responses:
//
//   - 401 with WWW-Authenticate when the Authorization header is missing or malformed
//   - 403 when the credentials do not match
//
// On success the username is available to handlers via ViewerFromContext.
package auth
