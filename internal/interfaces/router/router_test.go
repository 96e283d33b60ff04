package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	usersvc "stocktracker-backend/internal/application/user"
	"stocktracker-backend/internal/config"
	"stocktracker-backend/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) (*fiber.App, *usersvc.Service) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		Env:            "test",
		DatabaseURL:    ":memory:",
		RedisURL:       "redis://" + mr.Addr(),
		SessionSecret:  "router-test-secret",
		SessionTTL:     time.Hour,
		HealthAdminKey: "health-key",
	}
	app, db, rdb, err := CreateApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return app, &usersvc.Service{DB: db}
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func login(t *testing.T, app *fiber.App, username, password string) (string, uint) {
	t.Helper()
	status, out := call(t, app, "POST", "/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, fiber.StatusOK, status, out)
	data := out["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	return data["token"].(string), uint(user["id"].(float64))
}

func TestCreateApp_RequiresSecretAndRedis(t *testing.T) {
	_, _, _, err := CreateApp(&config.Config{RedisURL: "redis://localhost:6379"})
	assert.ErrorIs(t, err, errMissingSessionSecret)
	_, _, _, err = CreateApp(&config.Config{SessionSecret: "x"})
	assert.ErrorIs(t, err, errMissingRedisURL)
}

func TestTradingFlow(t *testing.T) {
	app, users := setupApp(t)

	_, err := users.Register(context.Background(), usersvc.RegisterInput{
		Username: "root", Password: "Passw0rd!", Email: "root@example.com", Role: constants.Admin,
	})
	require.NoError(t, err)
	adminToken, _ := login(t, app, "root", "Passw0rd!")

	status, _ := call(t, app, "POST", "/users", "", map[string]string{
		"username": "alice", "password": "Passw0rd!", "email": "alice@example.com",
	})
	require.Equal(t, fiber.StatusCreated, status)
	aliceToken, aliceID := login(t, app, "alice", "Passw0rd!")

	quote := map[string]interface{}{"ticker": "AAPL", "open_price": "225.00", "close_price": "227.50", "date": "2024-10-01"}
	status, _ = call(t, app, "POST", "/stocks", aliceToken, quote)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = call(t, app, "POST", "/stocks", adminToken, quote)
	require.Equal(t, fiber.StatusCreated, status)

	status, out := call(t, app, "GET", fmt.Sprintf("/portfolio/%d", aliceID), aliceToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, out["data"])

	status, _ = call(t, app, "POST", "/portfolios", "", map[string]interface{}{"ticker": "AAPL", "shares": 3})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, "POST", "/portfolios", aliceToken, map[string]interface{}{"ticker": "AAPL", "shares": 3})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = call(t, app, "POST", "/portfolios", aliceToken, map[string]interface{}{"ticker": "MSFT", "shares": 1})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = call(t, app, "POST", "/portfolio/remove", aliceToken, map[string]interface{}{"ticker": "AAPL", "shares": 5})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = call(t, app, "POST", "/portfolio/remove", aliceToken, map[string]interface{}{"ticker": "AAPL", "shares": 1})
	require.Equal(t, fiber.StatusOK, status)

	status, out = call(t, app, "GET", fmt.Sprintf("/portfolio/%d", aliceID), aliceToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := out["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, float64(2), rows[0].(map[string]interface{})["shares_owned"])

	status, out = call(t, app, "GET", fmt.Sprintf("/transactions/%d", aliceID), aliceToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, out["data"], 2)

	status, _ = call(t, app, "GET", "/admin/profiles", aliceToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = call(t, app, "DELETE", fmt.Sprintf("/admin/profiles/%d", aliceID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	// alice's sessions ended with the account
	status, _ = call(t, app, "GET", "/me", aliceToken, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, out = call(t, app, "GET", "/admin/actions", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, out["data"], 1)
}

func TestPublicRoutes(t *testing.T) {
	app, _ := setupApp(t)

	status, out := call(t, app, "GET", "/stocks", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, out["data"])

	status, _ = call(t, app, "GET", "/stocks/NOPE", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, out = call(t, app, "GET", "/health/json", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", out["status"])

	status, _ = call(t, app, "POST", "/users", "", map[string]string{
		"username": "mallory", "password": "Passw0rd!", "email": "m@example.com", "role": constants.Admin,
	})
	assert.Equal(t, fiber.StatusForbidden, status)
}
