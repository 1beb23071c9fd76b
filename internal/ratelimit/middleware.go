package ratelimit

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tuncerburak97/iskele/internal/apierror"
)

// Middleware creates a new rate limit middleware. A breached limit is
// reported as a tagged 429 so the app error handler renders the uniform
// envelope.
func Middleware(limiter Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := limiter.Allow(c)
		if err != nil {
			return err
		}

		for header, value := range result.LimitHeaders {
			c.Set(header, value)
		}

		if result.Limited {
			return apierror.TooManyRequests("")
		}

		return c.Next()
	}
}
