package middleware

import (
	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ActorKey is the context key for the user making the change
	ActorKey ContextKey = "actor"

	// ActorHeader carries the acting user's id
	ActorHeader = "X-User-ID"

	// AnonymousActor is recorded when no X-User-ID header is sent
	AnonymousActor = "anonymous"
)

// ExtractActor is a middleware that reads the X-User-ID header and stores
// it in the request context for the audit log.
//
// Accessing in handlers:
//
//	actor := middleware.GetActor(c)
func ExtractActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if actor := c.Request().Header.Get(ActorHeader); actor != "" {
				c.Set(string(ActorKey), actor)
			}
			return next(c)
		}
	}
}

// GetActor retrieves the actor from the request context
// Returns AnonymousActor if not set
func GetActor(c echo.Context) string {
	actor, ok := c.Get(string(ActorKey)).(string)
	if !ok || actor == "" {
		return AnonymousActor
	}
	return actor
}
