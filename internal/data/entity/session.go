package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionRetention is how long an expired or revoked session row is kept
// before the clean-sessions job deletes it.
const SessionRetention = 7 * 24 * time.Hour

// Session is an opaque bearer token issued at login.
type Session struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	Token     uuid.UUID  `db:"token"`
	UserAgent *string    `db:"user_agent"`
	IPAddress *string    `db:"ip_address"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

// Purgeable reports whether the session ended before cutoff, by expiry or revocation.
func (s *Session) Purgeable(cutoff time.Time) bool {
	if s.RevokedAt != nil && s.RevokedAt.Before(cutoff) {
		return true
	}
	return s.ExpiresAt.Before(cutoff)
}
