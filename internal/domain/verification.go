package domain

import "time"

// VerificationCode proves transient ownership of a mailbox. At most one
// record exists per email; issuing again replaces it.
type VerificationCode struct {
	Email     string
	Code      string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is no longer usable at now.
func (v *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
