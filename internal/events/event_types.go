package events

import (
	"time"

	"github.com/spec-kit/bookshelf-auth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventVerificationCodeIssued EventType = "verification_code_issued"
	EventUserRegistered         EventType = "user_registered"
	EventLoginSucceeded         EventType = "login_succeeded"
	EventLoginFailed            EventType = "login_failed"
	EventLoginSuspended         EventType = "login_suspended"
)

// Event represents a security-relevant occurrence in the authentication core.
// Payloads never carry passwords, hashes, codes or tokens.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Email     string      `json:"email"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// CodeIssuedPayload payload.
type CodeIssuedPayload struct {
	ExpiresAt time.Time `json:"expires_at"`
	Delivered bool      `json:"delivered"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Role domain.Role `json:"role"`
}

// LoginSucceededPayload payload.
type LoginSucceededPayload struct {
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}
