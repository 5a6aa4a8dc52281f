package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lyzr/crewledger/common/ratelimit"
)

// ActorLimiter checks a per-actor write quota
type ActorLimiter interface {
	CheckActor(ctx context.Context, actor string, limit int64, window time.Duration) (*ratelimit.Result, error)
}

// WriteRateLimit caps ledger writes per actor. Reads are never limited and
// a failed check lets the request through.
// Requires ExtractActor to run first.
func WriteRateLimit(limiter ActorLimiter, limit int64, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			actor := GetActor(c)
			result, err := limiter.CheckActor(c.Request().Context(), actor, limit, window)
			if err != nil {
				return next(c)
			}

			if !result.Allowed {
				c.Response().Header().Set("Retry-After", strconv.FormatInt(result.RetryAfterSeconds, 10))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":   "write_rate_limit_exceeded",
					"message": "Too many ledger changes. Please wait before trying again.",
					"details": map[string]interface{}{
						"actor":               actor,
						"limit":               result.Limit,
						"window":              window.String(),
						"current_count":       result.CurrentCount,
						"retry_after_seconds": result.RetryAfterSeconds,
					},
				})
			}

			return next(c)
		}
	}
}
