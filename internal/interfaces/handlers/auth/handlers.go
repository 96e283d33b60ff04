package auth

import (
	authsvc "stocktracker-backend/internal/application/auth"
	"stocktracker-backend/internal/middleware"
	"stocktracker-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service  *authsvc.Service
	Sessions *middleware.SessionStore
}

// Login POST /login: verify credentials, create a session, set the cookie and return the
// user plus the bearer token.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, authsvc.ErrCredentialsRequired.Message, fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.Login(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}

	token, sid, err := h.Sessions.Create(c.UserContext(), middleware.SessionUser{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	c.Cookie(h.Sessions.Cookie(token))
	log.Info().Uint("user_id", user.ID).Str("session_id_prefix", truncate(sid, 8)).Msg("login")

	return response.Success(c, "Login successful", fiber.Map{
		"user":  user,
		"token": token,
	}, nil)
}

// Me GET /me: current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.FromError(c, authsvc.ErrNotAuthenticated)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /logout: destroy the session and clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sid := middleware.GetSessionID(c)
	if user := middleware.GetUser(c); user != nil && sid != "" {
		if err := h.Sessions.Destroy(c.UserContext(), sid, user.UserID); err != nil {
			return response.FromError(c, err)
		}
	}
	c.Cookie(h.Sessions.Cookie(""))
	return response.Success(c, "Logged out successfully", nil, nil)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
