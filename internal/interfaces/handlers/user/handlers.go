package user

import (
	policies "stocktracker-backend/internal/application/policies/user"
	usersvc "stocktracker-backend/internal/application/user"
	"stocktracker-backend/internal/middleware"
	"stocktracker-backend/internal/pkg/constants"
	"stocktracker-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves registration and profile endpoints.
type Handlers struct {
	Service *usersvc.Service
}

// UpdateUserRequest is the PUT /users/:username body.
type UpdateUserRequest struct {
	Email string `json:"email"`
}

// CreateUser POST /users: register an account. Anonymous callers may only create customers;
// staff and admin accounts need an admin session.
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var req usersvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	req.Normalize()

	actorRole := ""
	if actor := middleware.GetUser(c); actor != nil {
		actorRole = actor.Role
	}
	if err := policies.ValidateRoleAssignment(actorRole, req.Role); err != nil {
		return response.FromError(c, err)
	}

	u, err := h.Service.Register(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user_id": u.ID}, nil)
}

// GetUser GET /users/:username: own profile, or any profile for admins.
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := canManage(c, username); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.View(c.UserContext(), username)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User fetched successfully", u, nil)
}

// UpdateUser PUT /users/:username: change the email of one's own profile (admins: any profile).
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := canManage(c, username); err != nil {
		return response.FromError(c, err)
	}
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return response.Error(c, "Missing update fields", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.UpdateEmail(c.UserContext(), username, req.Email)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User updated successfully", u, nil)
}

// DeleteUser DELETE /users/:username: close one's own account (admins: any non-admin account).
// Positions go with it; the transaction log is kept and live sessions end.
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := canManage(c, username); err != nil {
		return response.FromError(c, err)
	}
	actor := middleware.GetUser(c)
	if err := h.Service.DeleteAccount(c.UserContext(), actor.UserID, username); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User deleted successfully", fiber.Map{"username": username}, nil)
}

func canManage(c *fiber.Ctx, username string) error {
	actor := middleware.GetUser(c)
	if actor == nil {
		return usersvc.ErrUnauthenticated
	}
	if actor.Username == username || constants.AllowedRole(constants.ManageProfiles, actor.Role) {
		return nil
	}
	return policies.ErrNotYourAccount
}
