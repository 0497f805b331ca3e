// Package broadcast implements the UI broadcast channel (spec.md §6.3),
// the snapshot broadcaster (§4.11), and the broadcast coordinator (§4.12).
// The channel is intentionally lossy: subscribers that fall behind drop
// messages rather than block a handler (spec.md §9).
package broadcast

import "sync"

// Channel is a single in-process multi-subscriber string channel. Messages
// are plain text with a prefix selector, per spec.md §6.3.
type Channel struct {
	mu   sync.Mutex
	subs map[int]chan string
	next int
}

// NewChannel returns an empty broadcast channel.
func NewChannel() *Channel {
	return &Channel{subs: make(map[int]chan string)}
}

// Subscribe registers a new listener with the given buffer size and
// returns its receive channel plus an unsubscribe function. When the
// buffer is full, a new publish is dropped for that subscriber (already
// buffered messages are kept) rather than blocking the publisher.
func (c *Channel) Subscribe(buffer int) (<-chan string, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	ch := make(chan string, buffer)
	c.subs[id] = ch

	unsubscribe := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(existing)
		}
	}
	return ch, unsubscribe
}

// Publish fans msg out to every subscriber. A subscriber whose buffer is
// full has the message dropped for it; Publish never blocks.
func (c *Channel) Publish(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}
