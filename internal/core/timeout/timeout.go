package timeout

import (
	"errors"
	"time"
)

// ErrUsesDepleted signals an IncrementUses call on an already exhausted
// policy, which is a caller contract violation.
var ErrUsesDepleted = errors.New("uses already depleted")

// UnlimitedUses marks a policy as having no use limit.
const UnlimitedUses = -1

type Policy interface {
	// HasExpired reports whether the entry guarded by this policy has timed out.
	// It is side-effect free.
	HasExpired() bool
	// IncrementUses records a use and reports whether this call exhausted the
	// policy. Calling it after exhaustion returns ErrUsesDepleted.
	IncrementUses() (bool, error)
}

// Sliding expires when the configured duration passes since the last use or
// when the use limit is reached. Each use resets the clock.
type Sliding struct {
	lastTriggered time.Time
	duration      time.Duration
	usesLeft      int
}

func NewSliding(duration time.Duration, maxUses int) *Sliding {
	return &Sliding{
		lastTriggered: time.Now(),
		duration:      duration,
		usesLeft:      maxUses,
	}
}

func (s *Sliding) HasExpired() bool {
	if s.usesLeft == 0 {
		return true
	}

	return time.Since(s.lastTriggered) > s.duration
}

func (s *Sliding) IncrementUses() (bool, error) {
	if s.usesLeft == 0 {
		return true, ErrUsesDepleted
	}

	if s.usesLeft > 0 {
		s.usesLeft--
	}

	s.lastTriggered = time.Now()
	return s.usesLeft == 0, nil
}

// Deadline expires at an absolute point in time or when the use limit is
// reached, whichever comes first. Uses do not move the deadline.
type Deadline struct {
	expiresAt time.Time
	usesLeft  int
}

func NewDeadline(expiresAt time.Time, maxUses int) *Deadline {
	return &Deadline{expiresAt: expiresAt, usesLeft: maxUses}
}

func (d *Deadline) HasExpired() bool {
	return d.usesLeft == 0 || time.Now().After(d.expiresAt)
}

func (d *Deadline) IncrementUses() (bool, error) {
	if d.usesLeft == 0 {
		return true, ErrUsesDepleted
	}

	if d.usesLeft > 0 {
		d.usesLeft--
	}

	return d.usesLeft == 0, nil
}

// Never is a policy that never expires and allows unlimited uses.
type Never struct{}

func (Never) HasExpired() bool { return false }

func (Never) IncrementUses() (bool, error) { return false, nil }
