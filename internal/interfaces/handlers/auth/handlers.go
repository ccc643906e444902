package auth

import (
	"time"

	authsvc "churchflow-backend/internal/application/auth"
	"churchflow-backend/internal/middleware"
	"churchflow-backend/internal/pkg/response"
	"churchflow-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *authsvc.Service
	Cookie  middleware.CookieConfig
}

func (h *Handlers) setSession(c *fiber.Ctx, s *authsvc.Session) {
	c.Cookie(middleware.SessionCookie(h.Cookie, s.Token, time.Until(s.ExpiresAt)))
}

func sessionData(s *authsvc.Session) fiber.Map {
	return fiber.Map{"user": s.User, "token": s.Token, "expiresAt": s.ExpiresAt}
}

// Register POST /api/v1/auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in authsvc.RegisterInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	if err := validation.Struct(&in, authsvc.ErrMissingFields.Message); err != nil {
		return response.FromError(c, err)
	}
	session, err := h.Service.Register(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	h.setSession(c, session)
	return response.SuccessCreated(c, "Church and pastor registered successfully", sessionData(session), nil)
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in authsvc.LoginInput
	if err := validation.DecodeJSON(c.Body(), &in); err != nil {
		return response.FromError(c, err)
	}
	session, err := h.Service.Login(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	h.setSession(c, session)
	return response.Success(c, "Login successful", sessionData(session), nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	user, err := h.Service.Me(c.UserContext(), *id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User fetched successfully", fiber.Map{"user": user}, nil)
}

// Logout POST /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	if id == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Logout(c.UserContext(), *id); err != nil {
		return response.FromError(c, err)
	}
	c.Cookie(middleware.ExpiredSessionCookie(h.Cookie))
	return response.Success(c, "Logged out successfully", nil, nil)
}
