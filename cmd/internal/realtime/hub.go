package realtime

import (
	"log/slog"
	"sync"
	"time"
)

// Hub fans feed events out to every joined client.
//
// Join/Leave are safe under concurrent Broadcast. Broadcast never blocks: a
// client whose queue is full misses the event.
type Hub struct {
	log     *slog.Logger
	metrics *Metrics
	now     func() time.Time

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub constructs a Hub. m may be nil.
func NewHub(log *slog.Logger, m *Metrics) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:     log,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
		clients: make(map[string]*Client),
	}
}

// Join subscribes client to the feed.
func (h *Hub) Join(client *Client) {
	if h == nil || client == nil || client.SessionID == "" {
		return
	}
	h.mu.Lock()
	h.clients[client.SessionID] = client
	n := len(h.clients)
	h.mu.Unlock()

	h.metrics.setClients(n)
	h.log.Info("feed.client.join", "session_id", client.SessionID, "user_id", client.UserID)
}

// Leave unsubscribes a session and signals its shutdown.
func (h *Hub) Leave(sessionID string) {
	if h == nil || sessionID == "" {
		return
	}
	h.mu.Lock()
	cl := h.clients[sessionID]
	delete(h.clients, sessionID)
	n := len(h.clients)
	h.mu.Unlock()

	// Removed before Close so no broadcaster holds a closing client.
	if cl != nil {
		cl.Close()
	}
	h.metrics.setClients(n)
	h.log.Info("feed.client.leave", "session_id", sessionID)
}

// Len returns the number of joined clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish builds a post event and broadcasts it.
func (h *Hub) Publish(typ string, postID int64, title string) {
	if h == nil {
		return
	}
	ev := newEvent(typ, h.now())
	ev.PostID = postID
	ev.Title = title
	h.Broadcast(ev)
}

// Broadcast offers ev to every client and returns how many queued it.
func (h *Hub) Broadcast(ev Event) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	sent, dropped := 0, 0
	for _, c := range h.clients {
		if c.offer(ev) {
			sent++
		} else {
			dropped++
		}
	}
	h.mu.RUnlock()

	h.metrics.incPublished(ev.Type)
	h.metrics.addDropped(dropped)
	if dropped > 0 {
		h.log.Warn("feed.broadcast.dropped", "type", ev.Type, "dropped", dropped)
	}
	return sent
}
