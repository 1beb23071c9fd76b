package trace

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID is set on every response so clients can cross-reference
// log events with a single request.
const HeaderRequestID = "X-Request-ID"

const (
	localsRequestID = "trace_request_id"
	localsStartedAt = "trace_started_at"
)

// statusCoder is satisfied by errors that carry an explicit HTTP status.
type statusCoder interface {
	StatusCode() int
}

// New creates the request tracing middleware. Every request gets a fresh
// correlation id, an X-Request-ID response header, an "Incoming request"
// event on entry and a completion or failure event on exit. Errors are
// passed through unchanged so the app error handler can render them.
func New(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := uuid.New().String()
		c.Locals(localsRequestID, requestID)
		c.Locals(localsStartedAt, time.Now())
		c.Set(HeaderRequestID, requestID)

		logger.Info().
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("client_ip", c.IP()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Str("content_type", c.Get(fiber.HeaderContentType)).
			Int("content_length", len(c.Body())).
			Interface("query_params", c.Queries()).
			Interface("path_params", c.AllParams()).
			Msg("Incoming request")

		err := c.Next()
		duration := Elapsed(c)

		if err != nil {
			evt := logger.Error().
				Str("request_id", requestID).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("error", err.Error()).
				Str("duration", formatDuration(duration))
			if code := statusOf(err); code != 0 {
				evt = evt.Int("status_code", code)
			}
			evt.Msg("Request failed")
			return err
		}

		logger.Info().
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status_code", c.Response().StatusCode()).
			Str("duration", formatDuration(duration)).
			Int("content_length", len(c.Response().Body())).
			Msg("Request completed")

		return nil
	}
}

// RequestID returns the correlation id assigned by the middleware, or ""
// when the middleware has not run for this request.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(localsRequestID).(string); ok {
		return id
	}
	return ""
}

// Elapsed returns the time spent handling the request so far. A missing
// start timestamp yields zero, never a negative duration.
func Elapsed(c *fiber.Ctx) time.Duration {
	start, ok := c.Locals(localsStartedAt).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func statusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 0
}
