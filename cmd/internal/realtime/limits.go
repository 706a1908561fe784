package realtime

import "time"

const (
	// Max bytes per inbound frame. Clients only send pings.
	maxFrameBytes = 4 << 10

	heartbeatInterval = 25 * time.Second
	heartbeatTimeout  = 5 * time.Second

	// Inbound frames allowed per window before the session is closed.
	rateLimitFrames = 30
	rateLimitWindow = 10 * time.Second
)
