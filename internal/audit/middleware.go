package audit

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tuncerburak97/iskele/internal/trace"
)

// Middleware captures one request entry and one response entry per request
// and hands them to the service. Bodies are copied because fiber reuses
// its buffers once the handler returns.
func Middleware(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if svc == nil {
			return c.Next()
		}

		start := time.Now()
		requestID := trace.RequestID(c)

		svc.Record(&Entry{
			ID:            uuid.New().String(),
			RequestID:     requestID,
			Stage:         StageRequest,
			Timestamp:     start,
			Method:        c.Method(),
			URL:           c.OriginalURL(),
			Path:          c.Path(),
			PathParams:    c.AllParams(),
			QueryParams:   c.Queries(),
			Headers:       flattenHeaders(c.GetReqHeaders()),
			Body:          rawBody(c.Body()),
			ClientIP:      c.IP(),
			UserAgent:     c.Get(fiber.HeaderUserAgent),
			ContentLength: int64(len(c.Body())),
		})

		err := c.Next()

		status := c.Response().StatusCode()
		errText := ""
		if err != nil {
			errText = err.Error()
		}

		svc.Record(&Entry{
			ID:            uuid.New().String(),
			RequestID:     requestID,
			Stage:         StageResponse,
			Timestamp:     time.Now(),
			Method:        c.Method(),
			Path:          c.Path(),
			Headers:       flattenHeaders(c.GetRespHeaders()),
			Body:          rawBody(c.Response().Body()),
			ClientIP:      c.IP(),
			StatusCode:    status,
			Duration:      time.Since(start),
			ContentLength: int64(len(c.Response().Body())),
			Error:         errText,
		})

		return err
	}
}

// flattenHeaders converts map[string][]string to map[string]string
func flattenHeaders(headers map[string][]string) map[string]string {
	result := make(map[string]string, len(headers))
	for k, v := range headers {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}

// rawBody copies b into a value that always marshals as JSON. A non-JSON
// payload is stored as a JSON string so one bad body cannot fail the
// persistence batch it lands in.
func rawBody(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return append(json.RawMessage(nil), b...)
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}
