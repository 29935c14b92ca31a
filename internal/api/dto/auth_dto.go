package dto

import (
	"time"

	"github.com/spec-kit/bookshelf-auth/internal/domain"
)

// Envelope is the uniform response shape of every API endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Data    any    `json:"data"`
}

// Success wraps data in a successful envelope.
func Success(msg string, data any) Envelope {
	return Envelope{Success: true, Msg: msg, Data: data}
}

// Failure carries only the opaque error code.
func Failure(code string) Envelope {
	return Envelope{Success: false, Msg: code, Data: nil}
}

// RequestCodeRequest payload for POST /api/auth/request-code.
type RequestCodeRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// RegisterRequest payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6,max=32"`
	Code     string `json:"code"`
}

// LoginRequest payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an identity. The hash never leaves the service.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
}

// CodeIssuedResponse is returned by request-code.
type CodeIssuedResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginResponse carries the session token and the authenticated identity.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// SessionResponse describes the current session claims.
type SessionResponse struct {
	UserID    string    `json:"id"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
