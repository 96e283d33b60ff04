package admin

import (
	auditsvc "stocktracker-backend/internal/application/audit"
	usersvc "stocktracker-backend/internal/application/user"
	"stocktracker-backend/internal/middleware"
	"stocktracker-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// Handlers serves /admin routes. Every route is mounted behind an admin-only permission.
type Handlers struct {
	Users *usersvc.Service
	Audit *auditsvc.Service
}

// RecordActionRequest is the POST /admin/actions body.
type RecordActionRequest struct {
	Description string         `json:"description"`
	Details     datatypes.JSON `json:"details"`
}

// ListProfiles GET /admin/profiles
func (h *Handlers) ListProfiles(c *fiber.Ctx) error {
	users, err := h.Users.ListProfiles(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profiles fetched successfully", users, fiber.Map{"count": len(users)})
}

// DeleteProfile DELETE /admin/profiles/:id
func (h *Handlers) DeleteProfile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	admin := middleware.GetUser(c)
	if admin == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Users.Delete(c.UserContext(), admin.UserID, uint(id)); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile deleted successfully", fiber.Map{"user_id": id}, nil)
}

// ListActions GET /admin/actions?admin_id=
func (h *Handlers) ListActions(c *fiber.Ctx) error {
	adminID := c.QueryInt("admin_id", 0)
	if adminID < 0 {
		return response.Error(c, "Invalid admin id", fiber.StatusBadRequest, nil)
	}
	actions, err := h.Audit.List(c.UserContext(), uint(adminID))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Admin actions fetched successfully", actions, fiber.Map{"count": len(actions)})
}

// RecordAction POST /admin/actions
func (h *Handlers) RecordAction(c *fiber.Ctx) error {
	admin := middleware.GetUser(c)
	if admin == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req RecordActionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid admin action payload", fiber.StatusBadRequest, nil)
	}
	var details interface{}
	if len(req.Details) > 0 {
		details = req.Details
	}
	action, err := h.Audit.Record(c.UserContext(), admin.UserID, req.Description, details)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Admin action recorded", action, nil)
}
