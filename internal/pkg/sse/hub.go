package sse

import (
	"sync"
)

// Event is a live attendance notification pushed to dashboard subscribers.
type Event struct {
	Topic string
	Event string
	Data  interface{}
}

// Hub manages SSE subscribers and event broadcasting. Subscribers register
// on a topic (a department name, or "all" for admins).
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber for a topic and returns the event
// channel and a cleanup function.
func (h *Hub) Subscribe(topic string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan Event]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[topic], ch)
		close(ch)
		if len(h.subscribers[topic]) == 0 {
			delete(h.subscribers, topic)
		}
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of the event's topic and to
// the "all" topic. Slow subscribers are skipped rather than blocked on.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	topics := []string{event.Topic}
	if event.Topic != "all" {
		topics = append(topics, "all")
	}
	for _, topic := range topics {
		for ch := range h.subscribers[topic] {
			select {
			case ch <- event:
			default:
			}
		}
	}
}
