package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookshelf-auth/internal/api/dto"
	"github.com/spec-kit/bookshelf-auth/internal/auth"
	"github.com/spec-kit/bookshelf-auth/internal/service"
)

// AuthHandler exposes the registration, login and session endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	codes   *service.VerificationService
	session *auth.SessionMiddleware
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, codes *service.VerificationService, session *auth.SessionMiddleware) *AuthHandler {
	return &AuthHandler{auth: authService, codes: codes, session: session}
}

// RequestCode handles POST /api/auth/request-code.
func (h *AuthHandler) RequestCode(c *fiber.Ctx) error {
	var req dto.RequestCodeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	record, err := h.codes.Issue(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	return c.JSON(dto.Success("VERIFICATION_CODE_SENT", dto.CodeIssuedResponse{
		Email:     record.Email,
		ExpiresAt: record.ExpiresAt,
	}))
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), req.Email, req.Password, req.Code)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.Success("REGISTERED", dto.NewUserResponse(user)))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.session.SetCookie(c, token)
	return c.JSON(dto.Success("LOGGED_IN", dto.LoginResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      dto.NewUserResponse(user),
	}))
}

// Logout handles POST /api/auth/logout. Tokens are not revoked server-side;
// the cookie is discarded and the client drops any copy it holds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.session.ClearCookie(c)
	return c.JSON(dto.Success("LOGGED_OUT", nil))
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return auth.ErrTokenRequired
	}
	return c.JSON(dto.Success("OK", dto.SessionResponse{
		UserID:    principal.UserID,
		Role:      string(principal.Role),
		IssuedAt:  principal.IssuedAt,
		ExpiresAt: principal.ExpiresAt,
	}))
}

// AdminGetUser handles GET /api/admin/users/:id.
func (h *AuthHandler) AdminGetUser(c *fiber.Ctx) error {
	user, err := h.auth.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("OK", dto.NewUserResponse(user)))
}
