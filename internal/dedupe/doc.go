// Package dedupe suppresses repeated work keyed by content.
//
// A Window remembers SHA-256 fingerprints for a fixed TTL and a bounded number
// of keys. The notification dispatcher claims (thread, lead) pairs with it so an
// operator is told about a given lead once, even though every chat turn
// re-extracts leads from the whole thread.
package dedupe
