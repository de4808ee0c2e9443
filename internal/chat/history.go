package chat

import (
	"sync"
	"time"
)

const DefaultHistorySize = 100

// Message is an immutable broadcast chat message.
type Message struct {
	ID     uint64
	Sender string
	Body   string
	At     time.Time
}

// History keeps the most recent messages in id order. Ids start at 1, grow
// by exactly one per Append and are never reused, even after eviction.
type History struct {
	mu       sync.Mutex
	capacity int
	lastID   uint64
	entries  []Message
	now      func() time.Time
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		capacity: capacity,
		entries:  make([]Message, 0, capacity),
		now:      time.Now,
	}
}

// Append assigns the next id, stores the message and evicts the oldest
// entries beyond capacity, all under one lock.
func (h *History) Append(sender, body string) Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	msg := Message{ID: h.lastID, Sender: sender, Body: body, At: h.now().UTC()}
	h.entries = append(h.entries, msg)
	h.evictIfOverCapacity()
	return msg
}

// evictIfOverCapacity must be called with h.mu held.
func (h *History) evictIfOverCapacity() {
	overflow := len(h.entries) - h.capacity
	if overflow <= 0 {
		return
	}
	n := copy(h.entries, h.entries[overflow:])
	clear(h.entries[n:])
	h.entries = h.entries[:n]
}

// All returns a copy of the stored messages, oldest first.
func (h *History) All() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, len(h.entries))
	copy(out, h.entries)
	return out
}

// Contains reports whether the message id is still stored.
func (h *History) Contains(id uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return false
	}
	return id >= h.entries[0].ID && id <= h.lastID
}

// OldestID returns the id of the oldest stored message, or 0 when empty.
func (h *History) OldestID() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return 0
	}
	return h.entries[0].ID
}

func (h *History) LastID() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastID
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) Capacity() int {
	return h.capacity
}
