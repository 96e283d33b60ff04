package stocks

import (
	catalogsvc "stocktracker-backend/internal/application/catalog"
	"stocktracker-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *catalogsvc.Service
}

// ListStocks GET /stocks
func (h *Handlers) ListStocks(c *fiber.Ctx) error {
	quotes, err := h.Service.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stocks fetched successfully", quotes, fiber.Map{"count": len(quotes)})
}

// GetStock GET /stocks/:ticker returns the latest quote.
func (h *Handlers) GetStock(c *fiber.Ctx) error {
	quote, err := h.Service.Lookup(c.UserContext(), c.Params("ticker"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stock fetched successfully", quote, nil)
}

// GetHistory GET /stocks/:ticker/history
func (h *Handlers) GetHistory(c *fiber.Ctx) error {
	quotes, err := h.Service.History(c.UserContext(), c.Params("ticker"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stock history fetched successfully", quotes, fiber.Map{"count": len(quotes)})
}

// IngestStock POST /stocks: 201 when inserted, 200 when a quote for that date already existed.
func (h *Handlers) IngestStock(c *fiber.Ctx) error {
	var req catalogsvc.QuoteInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid quote payload", fiber.StatusBadRequest, nil)
	}
	quote, inserted, err := h.Service.Ingest(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	if inserted {
		return response.SuccessCreated(c, "Stock quote added", quote, nil)
	}
	return response.Success(c, "Stock quote already exists, skipped", quote, fiber.Map{"skipped": true})
}
