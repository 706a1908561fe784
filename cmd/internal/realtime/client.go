package realtime

import "sync"

// Client is one connected feed session.
//
// Send is never closed by the server so a concurrent Broadcast cannot panic;
// done signals shutdown instead.
type Client struct {
	SessionID string
	UserID    int64
	Send      chan Event

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a Client with a bounded send queue.
func NewClient(userID int64, sessionID string, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 64
	}
	return &Client{
		SessionID: sessionID,
		UserID:    userID,
		Send:      make(chan Event, sendQueueSize),
		done:      make(chan struct{}),
	}
}

// Done is closed when the client is shutting down.
func (c *Client) Done() <-chan struct{} {
	if c == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.done
}

// Close signals the client goroutines to stop. Idempotent.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() { close(c.done) })
}

// offer enqueues ev without blocking and reports whether it was queued.
func (c *Client) offer(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- ev:
		return true
	default:
		return false
	}
}
