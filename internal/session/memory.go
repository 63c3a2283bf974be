// ABOUTME: Thread-safe TTL and size-bounded in-memory session registry
// ABOUTME: Uses a doubly-linked list for O(1) eviction of the oldest session

package session

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// memoryEntry stores the conversation id, last-touch time, and list element
// for a user key.
type memoryEntry struct {
	conversationID string
	touched        time.Time
	element        *list.Element
}

// MemoryRegistry is an in-memory Registry bounded by TTL and entry count.
// Bounding keeps a long-running relay from accumulating one entry per user
// forever; an evicted or expired session simply starts a fresh conversation
// on the user's next message.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	order   *list.List // user ids, oldest-touched at front
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// NewMemoryRegistry creates a bounded in-memory registry. A background
// goroutine periodically removes expired sessions.
func NewMemoryRegistry(ttl time.Duration, maxSize int) *MemoryRegistry {
	r := &MemoryRegistry{
		entries: make(map[string]*memoryEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go r.cleanup()
	return r
}

// Get returns the user's conversation id, or ErrNotFound if the user has no
// session or it has expired.
func (r *MemoryRegistry) Get(_ context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[userID]
	if !ok || time.Since(entry.touched) > r.ttl {
		return "", ErrNotFound
	}
	return entry.conversationID, nil
}

// Put records the user's conversation id, refreshing its TTL. If the registry
// is at capacity, the oldest-touched session is evicted to make room.
func (r *MemoryRegistry) Put(_ context.Context, userID, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if entry, exists := r.entries[userID]; exists {
		entry.conversationID = conversationID
		entry.touched = now
		r.order.MoveToBack(entry.element)
		return nil
	}

	if len(r.entries) >= r.maxSize {
		r.evictOldest()
	}

	elem := r.order.PushBack(userID)
	r.entries[userID] = &memoryEntry{
		conversationID: conversationID,
		touched:        now,
		element:        elem,
	}
	return nil
}

// evictOldest removes the oldest-touched session. Must be called with mu held.
func (r *MemoryRegistry) evictOldest() {
	front := r.order.Front()
	if front == nil {
		return
	}
	userID, _ := front.Value.(string)
	r.order.Remove(front)
	delete(r.entries, userID)
}

// cleanup runs in a background goroutine, periodically removing expired
// sessions.
func (r *MemoryRegistry) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runCleanup()
		case <-r.done:
			return
		}
	}
}

func (r *MemoryRegistry) runCleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for userID, entry := range r.entries {
		if now.Sub(entry.touched) > r.ttl {
			r.order.Remove(entry.element)
			delete(r.entries, userID)
		}
	}
}

// Close stops the background cleanup goroutine. Safe to call multiple times.
func (r *MemoryRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closed {
		close(r.done)
		r.closed = true
	}
	return nil
}
