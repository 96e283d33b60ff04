package portfolio

import (
	ledgersvc "stocktracker-backend/internal/application/ledger"
	policies "stocktracker-backend/internal/application/policies/user"
	"stocktracker-backend/internal/middleware"
	"stocktracker-backend/internal/pkg/apperr"
	"stocktracker-backend/internal/pkg/constants"
	"stocktracker-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

var (
	errInvalidPayload = apperr.Validation("Invalid trade payload")
	errUnauthorized   = apperr.Unauthorized("Unauthorized")
)

type Handlers struct {
	Service *ledgersvc.Service
}

// TradeRequest is the body of buy and sell. A zero UserID means the session user.
type TradeRequest struct {
	UserID uint   `json:"user_id"`
	Ticker string `json:"ticker"`
	Shares int64  `json:"shares"`
}

// Buy POST /portfolios
func (h *Handlers) Buy(c *fiber.Ctx) error {
	req, err := parseTrade(c)
	if err != nil {
		return response.FromError(c, err)
	}
	pos, err := h.Service.Buy(c.UserContext(), req.UserID, req.Ticker, req.Shares)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stock added to portfolio", fiber.Map{
		"message":      "Stock added to portfolio",
		"portfolio_id": pos.ID,
		"shares_owned": pos.SharesOwned,
	}, nil)
}

// Sell POST /portfolio/remove
func (h *Handlers) Sell(c *fiber.Ctx) error {
	req, err := parseTrade(c)
	if err != nil {
		return response.FromError(c, err)
	}
	remaining, err := h.Service.Sell(c.UserContext(), req.UserID, req.Ticker, req.Shares)
	if err != nil {
		return response.FromError(c, err)
	}
	msg := "Shares sold"
	if remaining == 0 {
		msg = "Shares sold, position closed"
	}
	return response.Success(c, msg, fiber.Map{
		"message":      msg,
		"shares_owned": remaining,
	}, nil)
}

// GetPortfolio GET /portfolio/:user_id. A user without positions gets an empty list.
func (h *Handlers) GetPortfolio(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetUser(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := policies.ValidateActingFor(actor.UserID, actor.Role, uint(userID), constants.ViewAnyPortfolio); err != nil {
		return response.FromError(c, err)
	}
	holdings, err := h.Service.PositionsFor(c.UserContext(), uint(userID))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Portfolio fetched successfully", holdings, fiber.Map{"count": len(holdings)})
}

// parseTrade decodes the body, defaults user_id to the session user and checks the actor may
// trade for that user.
func parseTrade(c *fiber.Ctx) (TradeRequest, error) {
	var req TradeRequest
	if err := c.BodyParser(&req); err != nil {
		return req, errInvalidPayload
	}
	actor := middleware.GetUser(c)
	if actor == nil {
		return req, errUnauthorized
	}
	if req.UserID == 0 {
		req.UserID = actor.UserID
	}
	if err := policies.ValidateActingFor(actor.UserID, actor.Role, req.UserID, constants.TradeForOthers); err != nil {
		return req, err
	}
	return req, nil
}
