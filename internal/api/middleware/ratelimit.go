package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Limiter is the distributed counter behind the RateLimit middleware.
type Limiter interface {
	Allow(ctx context.Context, subject string) (allowed bool, retryAfter int, err error)
}

// RateLimit rejects requests over the per-subject budget with 429. The
// subject is the authenticated user when present, the client IP otherwise.
// A limiter backend failure lets the request through: availability over
// strictness.
func RateLimit(limiter Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, _ := c.Get("user_id").(string)
			if subject == "" {
				subject = c.RealIP()
			}

			allowed, retryAfter, err := limiter.Allow(c.Request().Context(), subject)
			if err != nil {
				return next(c)
			}
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
