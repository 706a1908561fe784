package realtime

import "time"

// Version is the feed protocol version carried in every event.
const Version = 1

// Event types. Post types mirror the blog write operations.
const (
	TypeHello          = "feed.hello"
	TypePostCreated    = "post.created"
	TypePostUpdated    = "post.updated"
	TypePostDeleted    = "post.deleted"
	TypeCommentCreated = "comment.created"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeError          = "error"
)

// Event is one JSON frame on the feed.
type Event struct {
	V       int       `json:"v"`
	Type    string    `json:"type"`
	ID      string    `json:"id"`
	PostID  int64     `json:"post_id,omitempty"`
	Title   string    `json:"title,omitempty"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
	TS      time.Time `json:"ts"`
}

// clientFrame is what a browser may send.
type clientFrame struct {
	Type string `json:"type"`
}

func newEvent(typ string, now time.Time) Event {
	return Event{V: Version, Type: typ, ID: NewEventID(now), TS: now}
}
