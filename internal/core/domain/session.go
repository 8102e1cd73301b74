package domain

import "time"

// Session represents one authenticated bearer token.
type Session struct {
	Key       string
	UserID    string
	CreatedAt time.Time
	Expiry    time.Time
}

// IsAlive reports whether the session is still valid at the supplied moment.
func (s Session) IsAlive(at time.Time) bool {
	return at.Before(s.Expiry)
}
