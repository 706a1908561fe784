package realtime

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewEventID returns a ULID so event ids sort by emission time in logs.
// It returns "" only if the system entropy source fails.
func NewEventID(now time.Time) string {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return ""
	}
	return id.String()
}

// NewSessionID returns a ULID naming one websocket session.
func NewSessionID(now time.Time) string { return NewEventID(now) }
