package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"churchflow-backend/internal/pkg/apperr"
	"churchflow-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// NewErrorHandler returns the global error handler. Server errors are logged and the
// latest entries are kept in Redis for /health/errors.
func NewErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else if ae, ok := apperr.As(err); ok {
			code = apperr.HTTPStatus(ae.Kind)
			if code < fiber.StatusInternalServerError {
				message = ae.Message
			}
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
			recordError(c.UserContext(), rdb, c, err)
		}
		return response.Error(c, message, code, nil)
	}
}

func recordError(ctx context.Context, rdb *redis.Client, c *fiber.Ctx, err error) {
	if rdb == nil {
		return
	}
	entry, _ := json.Marshal(map[string]any{
		"time":    time.Now().UTC(),
		"path":    c.OriginalURL(),
		"method":  c.Method(),
		"traceId": GetTraceID(c),
		"message": err.Error(),
	})
	pipe := rdb.Pipeline()
	pipe.LPush(ctx, KeyErrorLog, entry)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	if _, perr := pipe.Exec(ctx); perr != nil {
		log.Warn().Err(perr).Msg("error log write failed")
	}
}
