// Package sse fans in-app events out to the live Server-Sent Events
// connections of each user.
package sse

import (
	"sync"
)

const defaultBuffer = 16

// Event is one message for a user's open streams.
type Event struct {
	UserID string
	Name   string
	Data   interface{}
}

// Hub tracks open streams per user.
type Hub struct {
	mu     sync.RWMutex
	buffer int
	subs   map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		buffer: defaultBuffer,
		subs:   make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe opens a stream for userID. The returned cancel func closes the
// channel and must be called exactly once.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers e to every stream of e.UserID. Slow streams drop the
// event instead of blocking the publisher.
func (h *Hub) Publish(e Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subs[e.UserID] {
		select {
		case ch <- e:
			delivered++
		default:
		}
	}
	return delivered
}

// Connections returns the number of open streams across all users.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, s := range h.subs {
		n += len(s)
	}
	return n
}
