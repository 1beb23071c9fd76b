package apierror

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuncerburak97/iskele/internal/trace"
)

// newTestApp wires a normalizer as the app error handler and mounts a
// route that fails with the given error.
func newTestApp(logBuf *bytes.Buffer, production bool, failWith error) *fiber.App {
	logger := zerolog.Nop()
	if logBuf != nil {
		logger = zerolog.New(logBuf)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: NewNormalizer(logger, production).Handle,
	})
	app.Use(trace.New(zerolog.Nop()))
	app.Post("/fail", func(c *fiber.Ctx) error {
		return failWith
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, body string) (*http.Response, Envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/fail", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp, envelope
}

func TestNormalizer_TaggedErrorsWithoutMessage(t *testing.T) {
	cases := []struct {
		code        int
		wantError   string
		wantMessage string
	}{
		{fiber.StatusBadRequest, "Bad Request", "Bad Request"},
		{fiber.StatusUnauthorized, "Unauthorized", "Authentication required"},
		{fiber.StatusForbidden, "Forbidden", "Access denied"},
		{fiber.StatusNotFound, "Not Found", "Resource not found"},
		{fiber.StatusConflict, "Conflict", "Resource conflict"},
		{fiber.StatusUnprocessableEntity, "Unprocessable Entity", "Request could not be processed"},
		{fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.wantError, func(t *testing.T) {
			app := newTestApp(nil, false, New(tc.code, ""))

			resp, envelope := doRequest(t, app, "")
			assert.Equal(t, tc.code, resp.StatusCode)
			assert.Equal(t, tc.wantError, envelope.Error)
			assert.Equal(t, tc.wantMessage, envelope.Message)
			assert.Empty(t, envelope.Details)
		})
	}
}

func TestNormalizer_TaggedErrorKeepsMessage(t *testing.T) {
	app := newTestApp(nil, false, Conflict("email already registered"))

	resp, envelope := doRequest(t, app, "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Conflict", envelope.Error)
	assert.Equal(t, "email already registered", envelope.Message)
}

func TestNormalizer_FiberErrorIsTagged(t *testing.T) {
	app := newTestApp(nil, false, fiber.NewError(fiber.StatusForbidden, "no access"))

	resp, envelope := doRequest(t, app, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Forbidden", envelope.Error)
	assert.Equal(t, "no access", envelope.Message)
}

func TestNormalizer_ValidationError(t *testing.T) {
	failWith := NewValidationError(
		Problem{Field: "/email", Message: "must be string", Provided: 42},
		Problem{Field: "/role", Message: "must be one of the allowed values", Provided: "root", Expected: []string{"user", "admin"}},
	)
	app := newTestApp(nil, false, failWith)

	resp, envelope := doRequest(t, app, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation Error", envelope.Error)
	assert.Equal(t, "Request validation failed", envelope.Message)
	require.Len(t, envelope.Details, 2)
	assert.Equal(t, "/email", envelope.Details[0].Field)
	assert.Equal(t, "must be string", envelope.Details[0].Message)
	assert.Equal(t, "/role", envelope.Details[1].Field)
}

func TestNormalizer_UntaggedErrorDevelopment(t *testing.T) {
	app := newTestApp(nil, false, errors.New("db down"))

	resp, envelope := doRequest(t, app, "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", envelope.Error)
	assert.Equal(t, "db down", envelope.Message)
}

func TestNormalizer_UntaggedErrorProductionMasksMessage(t *testing.T) {
	app := newTestApp(nil, true, errors.New("db down"))

	req := httptest.NewRequest(http.MethodPost, "/fail", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(raw), "db down")

	var envelope Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "Internal Server Error", envelope.Error)
	assert.Equal(t, genericInternalMessage, envelope.Message)
}

func TestNormalizer_UnrecognizedCodeBecomes500(t *testing.T) {
	app := newTestApp(nil, false, New(http.StatusTeapot, "short and stout"))

	resp, envelope := doRequest(t, app, "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", envelope.Error)
	assert.Equal(t, "short and stout", envelope.Message)
}

func TestNormalizer_ResponseIsJSON(t *testing.T) {
	app := newTestApp(nil, false, NotFound(""))

	resp, _ := doRequest(t, app, "")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}

func TestNormalizer_LogsBeforeResponding(t *testing.T) {
	var buf bytes.Buffer
	app := newTestApp(&buf, false, BadRequest("bad payload"))

	_, _ = doRequest(t, app, `{"email":42}`)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "Request error", event["message"])
	assert.Equal(t, "error", event["level"])
	assert.Equal(t, "bad payload", event["error"])
	assert.Equal(t, "POST", event["method"])
	assert.Equal(t, float64(fiber.StatusBadRequest), event["status_code"])
	assert.NotEmpty(t, event["request_id"])
}

func TestNormalizer_LogsValidationDetails(t *testing.T) {
	var buf bytes.Buffer
	failWith := NewValidationError(Problem{Field: "/email", Message: "is required"})
	app := newTestApp(&buf, false, failWith)

	_, _ = doRequest(t, app, "")

	assert.Contains(t, buf.String(), "validation_details")
	assert.Contains(t, buf.String(), "/email")
}

func TestNormalizer_EnvelopeShapeIsStableAcrossRequests(t *testing.T) {
	app := newTestApp(nil, false, BadRequest("bad payload"))

	req1 := httptest.NewRequest(http.MethodPost, "/fail", nil)
	resp1, err := app.Test(req1)
	require.NoError(t, err)
	body1, _ := io.ReadAll(resp1.Body)

	req2 := httptest.NewRequest(http.MethodPost, "/fail", nil)
	resp2, err := app.Test(req2)
	require.NoError(t, err)
	body2, _ := io.ReadAll(resp2.Body)

	assert.Equal(t, string(body1), string(body2))
	assert.NotEqual(t, resp1.Header.Get(trace.HeaderRequestID), resp2.Header.Get(trace.HeaderRequestID))
}
