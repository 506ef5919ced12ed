package app

import (
	"crypto/subtle"
	"time"

	"weekly-quiz-service/internal/domain"
)

// AdminGate checks the deployment admin secret.
type AdminGate struct {
	secret []byte
}

func NewAdminGate(secret string) AdminGate {
	return AdminGate{secret: []byte(secret)}
}

// Check returns ErrUnauthorized unless candidate equals the secret.
// An unset secret rejects everything.
func (g AdminGate) Check(candidate string) error {
	if !g.Is(candidate) {
		return domain.ErrUnauthorized
	}
	return nil
}

// Is reports whether candidate is the admin secret.
func (g AdminGate) Is(candidate string) bool {
	if len(g.secret) == 0 || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare(g.secret, []byte(candidate)) == 1
}

// Clock yields "now" in the schedule time zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(loc *time.Location) Clock {
	return NewClockWithNow(loc, time.Now)
}

// NewClockWithNow is used by tests for deterministic dates.
func NewClockWithNow(loc *time.Location, now func() time.Time) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{loc: loc, now: now}
}

func (c Clock) Now() time.Time { return c.now().In(c.loc) }

// Today is the current calendar date in the schedule time zone.
func (c Clock) Today() string { return c.Now().Format(domain.DateLayout) }
