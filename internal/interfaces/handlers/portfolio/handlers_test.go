package portfolio

import (
	"context"
	"fmt"
	"testing"

	catalogsvc "stocktracker-backend/internal/application/catalog"
	ledgersvc "stocktracker-backend/internal/application/ledger"
	"stocktracker-backend/internal/domain"
	"stocktracker-backend/internal/middleware"
	"stocktracker-backend/internal/pkg/constants"
	"stocktracker-backend/internal/pkg/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	h     *Handlers
	alice uint
	bob   uint
}

func setupPortfolio(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	alice := domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: constants.Customer}
	bob := domain.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x", Role: constants.Customer}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	cat := &catalogsvc.Service{DB: db}
	_, _, err := cat.Ingest(context.Background(), catalogsvc.QuoteInput{
		Ticker: "AAPL", OpenPrice: decimal.NewFromFloat(236.1), ClosePrice: decimal.NewFromFloat(237.5), TradeDate: "2024-11-29",
	})
	require.NoError(t, err)
	_, _, err = cat.Ingest(context.Background(), catalogsvc.QuoteInput{
		Ticker: "TSLA", OpenPrice: decimal.NewFromFloat(336), ClosePrice: decimal.NewFromFloat(345), TradeDate: "2024-11-29",
	})
	require.NoError(t, err)

	return &fixture{db: db, h: &Handlers{Service: &ledgersvc.Service{DB: db}}, alice: alice.ID, bob: bob.ID}
}

func (f *fixture) app(actor *middleware.SessionUser) *fiber.App {
	app := fiber.New()
	app.Use(testutil.AsUser(actor))
	app.Post("/portfolios", middleware.RequireAuth(), f.h.Buy)
	app.Post("/portfolio/remove", middleware.RequireAuth(), f.h.Sell)
	app.Get("/portfolio/:user_id", middleware.RequireAuth(), f.h.GetPortfolio)
	return app
}

func trade(userID uint, ticker string, shares int64) map[string]interface{} {
	return map[string]interface{}{"user_id": userID, "ticker": ticker, "shares": shares}
}

func TestBuySellWorkedExample(t *testing.T) {
	f := setupPortfolio(t)
	app := f.app(&middleware.SessionUser{UserID: f.alice, Username: "alice", Role: constants.Customer})

	status, out := testutil.Do(t, app, "POST", "/portfolios", trade(f.alice, "AAPL", 10))
	require.Equal(t, fiber.StatusOK, status, out)
	data := testutil.Data(out).(map[string]interface{})
	assert.Equal(t, "Stock added to portfolio", data["message"])
	portfolioID := data["portfolio_id"]
	assert.NotZero(t, portfolioID)

	status, out = testutil.Do(t, app, "POST", "/portfolios", trade(0, "AAPL", 5))
	require.Equal(t, fiber.StatusOK, status)
	data = testutil.Data(out).(map[string]interface{})
	assert.Equal(t, portfolioID, data["portfolio_id"])
	assert.Equal(t, float64(15), data["shares_owned"])

	status, out = testutil.Do(t, app, "POST", "/portfolio/remove", trade(f.alice, "AAPL", 100))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Insufficient shares", testutil.ErrorMessage(out))

	status, _ = testutil.Do(t, app, "POST", "/portfolio/remove", trade(f.alice, "AAPL", 15))
	require.Equal(t, fiber.StatusOK, status)

	status, out = testutil.Do(t, app, "GET", fmt.Sprintf("/portfolio/%d", f.alice), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []interface{}{}, testutil.Data(out))
}

func TestBuy_Rejections(t *testing.T) {
	f := setupPortfolio(t)
	app := f.app(&middleware.SessionUser{UserID: f.alice, Username: "alice", Role: constants.Customer})

	status, out := testutil.Do(t, app, "POST", "/portfolios", trade(f.alice, "GOOG", 1))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Unknown ticker", testutil.ErrorMessage(out))

	status, _ = testutil.Do(t, app, "POST", "/portfolios", trade(f.alice, "AAPL", 0))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = testutil.Do(t, app, "POST", "/portfolios", map[string]interface{}{"user_id": f.alice, "ticker": "AAPL", "shares": 1.5})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = testutil.Do(t, app, "POST", "/portfolios", trade(f.bob, "AAPL", 1))
	assert.Equal(t, fiber.StatusForbidden, status)

	var count int64
	require.NoError(t, f.db.Model(&domain.TransactionRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBuy_RequiresSession(t *testing.T) {
	f := setupPortfolio(t)
	status, _ := testutil.Do(t, f.app(nil), "POST", "/portfolios", trade(f.alice, "AAPL", 1))
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAdminTradesForOthers(t *testing.T) {
	f := setupPortfolio(t)
	app := f.app(&middleware.SessionUser{UserID: 999, Username: "root", Role: constants.Admin})

	status, _ := testutil.Do(t, app, "POST", "/portfolios", trade(f.bob, "TSLA", 3))
	require.Equal(t, fiber.StatusOK, status)

	status, _ = testutil.Do(t, app, "POST", "/portfolios", trade(12345, "TSLA", 3))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGetPortfolio_AccessAndShape(t *testing.T) {
	f := setupPortfolio(t)
	ctx := context.Background()
	_, err := f.h.Service.Buy(ctx, f.bob, "TSLA", 2)
	require.NoError(t, err)
	_, err = f.h.Service.Buy(ctx, f.bob, "AAPL", 4)
	require.NoError(t, err)
	path := fmt.Sprintf("/portfolio/%d", f.bob)

	status, _ := testutil.Do(t, f.app(&middleware.SessionUser{UserID: f.alice, Role: constants.Customer}), "GET", path, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, out := testutil.Do(t, f.app(&middleware.SessionUser{UserID: 50, Role: constants.Staff}), "GET", path, nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := testutil.Data(out).([]interface{})
	require.Len(t, rows, 2)
	first := rows[0].(map[string]interface{})
	assert.Equal(t, "AAPL", first["ticker"])
	assert.Equal(t, float64(4), first["shares_owned"])
	assert.Equal(t, "236.1", first["open_price"])
	assert.Equal(t, "237.5", first["close_price"])
	assert.Equal(t, "1.4", first["difference"])
	assert.Equal(t, "2024-11-29", first["date"])

	status, _ = testutil.Do(t, f.app(&middleware.SessionUser{UserID: f.bob, Role: constants.Customer}), "GET", "/portfolio/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
