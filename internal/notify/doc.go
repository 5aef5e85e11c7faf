// Package notify tells an operator about detected leads.
//
// Channels implement Notifier: SMTPNotifier sends mail through go-mail and
// MatrixNotifier posts to a Matrix room. Multi fans out to several channels.
//
// The Dispatcher sits between the chat path and the channels. Dispatch returns
// at once; delivery happens in a goroutine under its own timeout, so a slow or
// broken mail server never delays or fails a chat reply. Because each chat turn
// re-extracts leads from the whole thread, the Dispatcher remembers delivered
// (thread, lead) pairs for a TTL and skips repeats. A failed delivery is
// forgotten so the next turn retries it.
package notify
