// ABOUTME: Bounded TTL window of content fingerprints for suppressing repeat notifications
// ABOUTME: Keys are SHA-256 digests so arbitrary lead text never sits in memory verbatim

package dedupe

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultMaxKeys caps the number of fingerprints a Window remembers.
const DefaultMaxKeys = 10000

type windowEntry struct {
	claimedAt time.Time
	element   *list.Element
}

// Window remembers which fingerprints were claimed within the last ttl.
// The oldest fingerprint is evicted when the window is full.
type Window struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	order   *list.List // oldest at front
	ttl     time.Duration
	maxKeys int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a Window. A sweep goroutine drops expired fingerprints until Close.
func New(ttl time.Duration, maxKeys int) *Window {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	w := &Window{
		entries: make(map[string]*windowEntry),
		order:   list.New(),
		ttl:     ttl,
		maxKeys: maxKeys,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go w.sweepLoop()
	return w
}

// Fingerprint hashes the parts into a single key. Parts are length-prefixed
// so ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	var prefix [8]byte
	for _, p := range parts {
		n := len(p)
		for i := range prefix {
			prefix[i] = byte(n >> (8 * i))
		}
		h.Write(prefix[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Claim records the fingerprint of parts and reports whether the caller is the
// first to claim it within the window. A false result means a duplicate.
func (w *Window) Claim(parts ...string) bool {
	key := Fingerprint(parts...)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if entry, ok := w.entries[key]; ok {
		if now.Sub(entry.claimedAt) < w.ttl {
			return false
		}
		entry.claimedAt = now
		w.order.MoveToBack(entry.element)
		return true
	}

	if len(w.entries) >= w.maxKeys {
		w.evictOldestLocked()
	}
	w.entries[key] = &windowEntry{claimedAt: now, element: w.order.PushBack(key)}
	return true
}

// Release forgets the fingerprint of parts so a later Claim succeeds again.
func (w *Window) Release(parts ...string) {
	key := Fingerprint(parts...)

	w.mu.Lock()
	defer w.mu.Unlock()

	if entry, ok := w.entries[key]; ok {
		w.order.Remove(entry.element)
		delete(w.entries, key)
	}
}

// Len returns the number of remembered fingerprints, expired or not.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

func (w *Window) evictOldestLocked() {
	front := w.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	w.order.Remove(front)
	delete(w.entries, key)
}

func (w *Window) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.done:
			return
		}
	}
}

// sweep drops expired fingerprints. Claims are appended in time order, so it
// stops at the first live one.
func (w *Window) sweep() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	for e := w.order.Front(); e != nil; {
		key, _ := e.Value.(string)
		entry := w.entries[key]
		if now.Sub(entry.claimedAt) < w.ttl {
			return
		}
		next := e.Next()
		w.order.Remove(e)
		delete(w.entries, key)
		e = next
	}
}

// Close stops the sweep goroutine. It is safe to call multiple times.
func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.closed {
		close(w.done)
		w.closed = true
	}
}
