package transactions

import (
	policies "stocktracker-backend/internal/application/policies/user"
	txsvc "stocktracker-backend/internal/application/transactions"
	"stocktracker-backend/internal/middleware"
	"stocktracker-backend/internal/pkg/constants"
	"stocktracker-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *txsvc.Service
}

// GetTransactions GET /transactions/:user_id?ticker=&limit=
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	if err := policies.ValidateActingFor(user.UserID, user.Role, uint(userID), constants.ViewAnyPortfolio); err != nil {
		return response.FromError(c, err)
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return response.Error(c, "limit must not be negative", fiber.StatusBadRequest, nil)
	}

	records, err := h.Service.History(c.UserContext(), uint(userID), txsvc.Filter{
		Ticker: c.Query("ticker"),
		Limit:  limit,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions fetched successfully", records, fiber.Map{"count": len(records)})
}
