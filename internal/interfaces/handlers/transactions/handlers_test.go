package transactions

import (
	"testing"

	txsvc "stocktracker-backend/internal/application/transactions"
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

func setupTxApp(t *testing.T, actor *middleware.SessionUser) (*fiber.App, *gorm.DB) {
	db := testutil.NewDB(t)
	h := &Handlers{Service: &txsvc.Service{DB: db}}
	app := fiber.New()
	app.Use(testutil.AsUser(actor))
	app.Get("/transactions/:user_id", h.GetTransactions)
	return app, db
}

func TestGetTransactions_MissingSession(t *testing.T) {
	app, _ := setupTxApp(t, nil)
	status, _ := testutil.Do(t, app, "GET", "/transactions/1", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestGetTransactions_EmptyResult(t *testing.T) {
	app, _ := setupTxApp(t, &middleware.SessionUser{UserID: 1, Role: constants.Customer})
	status, out := testutil.Do(t, app, "GET", "/transactions/1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []interface{}{}, testutil.Data(out))
}

func TestGetTransactions_WithData(t *testing.T) {
	app, db := setupTxApp(t, &middleware.SessionUser{UserID: 1, Role: constants.Customer})
	for _, r := range []domain.TransactionRecord{
		{UserID: 1, Ticker: "AAPL", Action: domain.ActionBuy, SharesChanged: 10, Price: decimal.NewFromInt(230)},
		{UserID: 1, Ticker: "AAPL", Action: domain.ActionSell, SharesChanged: -3, Price: decimal.NewFromInt(231)},
		{UserID: 1, Ticker: "TSLA", Action: domain.ActionBuy, SharesChanged: 1, Price: decimal.NewFromInt(345)},
	} {
		r := r
		require.NoError(t, db.Create(&r).Error)
	}

	status, out := testutil.Do(t, app, "GET", "/transactions/1?ticker=aapl", nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := testutil.Data(out).([]interface{})
	require.Len(t, rows, 2)
	first := rows[0].(map[string]interface{})
	assert.Equal(t, "sell", first["action"])
	assert.Equal(t, float64(-3), first["shares_changed"])
	assert.Contains(t, first, "timestamp")

	status, out = testutil.Do(t, app, "GET", "/transactions/1?limit=1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, testutil.Data(out), 1)

	status, _ = testutil.Do(t, app, "GET", "/transactions/1?limit=-1", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetTransactions_OtherUser(t *testing.T) {
	app, _ := setupTxApp(t, &middleware.SessionUser{UserID: 1, Role: constants.Customer})
	status, _ := testutil.Do(t, app, "GET", "/transactions/2", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	staffApp, _ := setupTxApp(t, &middleware.SessionUser{UserID: 1, Role: constants.Staff})
	status, _ = testutil.Do(t, staffApp, "GET", "/transactions/2", nil)
	assert.Equal(t, fiber.StatusOK, status)
}
