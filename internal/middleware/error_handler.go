package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"stocktracker-backend/internal/pkg/apperr"
	"stocktracker-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// ErrorHandler is the global error handler. It renders the standard error format and, for 5xx,
// appends an entry to the Redis error log read by /health/errors. rdb may be nil.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := apperr.Status(err)
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code, message = fe.Code, fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
			if rdb != nil {
				recordError(c, rdb, err)
			}
		}
		return response.Error(c, message, code, nil)
	}
}

func recordError(c *fiber.Ctx, rdb *redis.Client, err error) {
	entry, _ := json.Marshal(map[string]interface{}{
		"time":     time.Now().UTC(),
		"path":     c.OriginalURL(),
		"method":   c.Method(),
		"message":  err.Error(),
		"trace_id": GetTraceID(c),
	})
	ctx := context.Background()
	pipe := rdb.Pipeline()
	pipe.LPush(ctx, KeyErrorLog, entry)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	if _, perr := pipe.Exec(ctx); perr != nil {
		log.Warn().Err(perr).Msg("failed to record error log entry")
	}
}
