package types

import "time"

// Session is the descriptor of the session currently held by this client.
//
// CreatedAt is stamped locally when InitSession returns; the backend never
// sends it.
type Session struct {
	ID        SessionID `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Age reports how long ago the session was created, relative to now.
// A zero CreatedAt (sessions persisted by older clients) has age zero.
func (s Session) Age(now time.Time) time.Duration {
	if s.CreatedAt.IsZero() {
		return 0
	}
	return now.Sub(s.CreatedAt)
}

// DeviceIdentity binds sessions to this install. It survives logout.
type DeviceIdentity struct {
	ID        DeviceID  `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
}
