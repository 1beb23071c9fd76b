package apierror

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tuncerburak97/iskele/internal/trace"
)

// genericInternalMessage replaces internal error text in production so no
// implementation detail reaches the client.
const genericInternalMessage = "An unexpected error occurred"

// categories maps a tagged status code to its envelope category and the
// message used when the error carries none.
var categories = map[int]struct {
	name     string
	fallback string
}{
	fiber.StatusBadRequest:          {"Bad Request", "Bad Request"},
	fiber.StatusUnauthorized:        {"Unauthorized", "Authentication required"},
	fiber.StatusForbidden:           {"Forbidden", "Access denied"},
	fiber.StatusNotFound:            {"Not Found", "Resource not found"},
	fiber.StatusConflict:            {"Conflict", "Resource conflict"},
	fiber.StatusUnprocessableEntity: {"Unprocessable Entity", "Request could not be processed"},
	fiber.StatusTooManyRequests:     {"Too Many Requests", "Rate limit exceeded"},
}

// Normalizer is the single point through which every error escaping a
// handler or middleware is turned into a uniform JSON envelope. It is
// installed as the fiber app's ErrorHandler.
type Normalizer struct {
	logger     zerolog.Logger
	production bool
}

// NewNormalizer builds a normalizer. In production mode internal error
// messages are masked in the response body; the log always gets the
// full text.
func NewNormalizer(logger zerolog.Logger, production bool) *Normalizer {
	return &Normalizer{logger: logger, production: production}
}

// Handle classifies err, logs it and writes exactly one response.
// Classification order: validation failure, tagged HTTP error, anything
// else as a 500. It never returns an error itself.
func (n *Normalizer) Handle(c *fiber.Ctx, err error) error {
	status, envelope := n.normalize(err)

	n.log(c, err, status, envelope.Details)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Status(status)

	body, marshalErr := json.Marshal(envelope)
	if marshalErr != nil {
		// Details held something unserializable; fall back to the bare envelope.
		body, _ = json.Marshal(Envelope{Error: envelope.Error, Message: envelope.Message})
	}
	return c.Send(body)
}

func (n *Normalizer) normalize(err error) (int, Envelope) {
	var ve *ValidationError
	if errors.As(err, &ve) && len(ve.Problems) > 0 {
		return fiber.StatusBadRequest, Envelope{
			Error:   "Validation Error",
			Message: "Request validation failed",
			Details: ve.Problems,
		}
	}

	// Pull the status and raw message off the tagged error so that an
	// empty message still triggers the per-status fallback below.
	code := 0
	message := ""
	var ae *Error
	var fe *fiber.Error
	switch {
	case errors.As(err, &ae):
		code, message = ae.Code, ae.Message
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	default:
		if err != nil {
			message = err.Error()
		}
	}

	if cat, ok := categories[code]; ok {
		if message == "" {
			message = cat.fallback
		}
		return code, Envelope{Error: cat.name, Message: message}
	}

	// Untagged errors and unrecognized codes collapse into a 500.
	if n.production || message == "" {
		message = genericInternalMessage
	}
	return fiber.StatusInternalServerError, Envelope{
		Error:   "Internal Server Error",
		Message: message,
	}
}

func (n *Normalizer) log(c *fiber.Ctx, err error, status int, details []Problem) {
	evt := n.logger.Error().
		Str("request_id", trace.RequestID(c)).
		Str("method", c.Method()).
		Str("url", c.OriginalURL()).
		Str("path", c.Path()).
		Str("client_ip", c.IP()).
		Str("user_agent", c.Get(fiber.HeaderUserAgent)).
		Interface("query_params", c.Queries()).
		Interface("path_params", c.AllParams()).
		Int("status_code", status)

	if err != nil {
		evt = evt.Str("error", err.Error())
	}
	if len(details) > 0 {
		evt = evt.Interface("validation_details", details)
	}
	if body := c.Body(); len(body) > 0 {
		evt = evt.Bytes("body", body)
	}

	evt.Msg("Request error")
}
