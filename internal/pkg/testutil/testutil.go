// Package testutil holds helpers shared by handler and service tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"stocktracker-backend/internal/infrastructure/database"
	"stocktracker-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// AsUser is a middleware that puts user in Locals the way the session middleware does.
// A nil user leaves the request anonymous.
func AsUser(user *middleware.SessionUser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user != nil {
			middleware.SetUser(c, user)
		}
		return c.Next()
	}
}

// Do sends a request with an optional JSON body and decodes the JSON response.
func Do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
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

// Data returns the "data" field of a success envelope.
func Data(out map[string]interface{}) interface{} {
	return out["data"]
}

// ErrorMessage returns error.message of an error envelope.
func ErrorMessage(out map[string]interface{}) string {
	e, _ := out["error"].(map[string]interface{})
	msg, _ := e["message"].(string)
	return msg
}
