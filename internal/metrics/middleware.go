package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tuncerburak97/iskele/internal/apierror"
)

// Middleware records per-request counters, durations and response sizes.
// The metrics endpoint itself is skipped so scrapes do not inflate the
// numbers.
func Middleware(m *MetricsCollector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		m.IncActiveRequests()
		defer m.DecActiveRequests()

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet, so derive the final
			// status from the error itself.
			status = fiber.StatusInternalServerError
			if code := apierror.StatusOf(err); code != 0 {
				status = code
			}
			m.LogError("request", err)
		}

		method := c.Method()
		path := c.Path()
		statusLabel := strconv.Itoa(status)

		m.IncRequestCounter(method, path, statusLabel)
		m.ObserveRequestDuration(method, path, statusLabel, duration)
		m.ObserveResponseSize(method, path, statusLabel, len(c.Response().Body()))

		return err
	}
}
