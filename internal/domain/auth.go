package domain

import "time"

// Role is ordered by privilege level: USER < ADMIN.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Level returns the privilege rank of the role. Unknown roles rank below USER.
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Level() > 0
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && min.Valid() && r.Level() >= min.Level()
}

// SessionToken is a signed bearer value together with its expiry.
type SessionToken struct {
	Value     string
	ExpiresAt time.Time
}
