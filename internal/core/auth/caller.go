package auth

import "time"

// Caller is the authenticated session attached to a request.
type Caller struct {
	ID        string
	Email     string
	SessionID string
	ExpiresAt time.Time
}

func CallerFromClaims(c *Claims) Caller {
	out := Caller{ID: c.UID, Email: c.Email, SessionID: c.ID}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
