package apierror

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Problem is a single field-level validation failure surfaced to the client.
// Field is a JSON-pointer style locator into the offending payload.
type Problem struct {
	Field    string      `json:"field"`
	Message  string      `json:"message"`
	Provided interface{} `json:"provided,omitempty"`
	Expected interface{} `json:"expected,omitempty"`
}

// Envelope is the JSON body returned for every failed request.
type Envelope struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Details []Problem `json:"details,omitempty"`
}

// Error is an error tagged with an explicit HTTP status code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Code)
	}
	return e.Message
}

// StatusCode reports the HTTP status carried by the error.
func (e *Error) StatusCode() int { return e.Code }

// New creates an error tagged with the given status code.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func BadRequest(message string) *Error {
	return New(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(fiber.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(fiber.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(fiber.StatusConflict, message)
}

func Unprocessable(message string) *Error {
	return New(fiber.StatusUnprocessableEntity, message)
}

func TooManyRequests(message string) *Error {
	return New(fiber.StatusTooManyRequests, message)
}

func Internal(message string) *Error {
	return New(fiber.StatusInternalServerError, message)
}

// ValidationError carries an ordered list of per-field validation problems.
// It always renders as a 400, regardless of any status code wrapped below it.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string { return "request validation failed" }

// StatusCode reports the fixed status for validation failures.
func (e *ValidationError) StatusCode() int { return fiber.StatusBadRequest }

// NewValidationError builds a validation error from one or more problems.
func NewValidationError(problems ...Problem) *ValidationError {
	return &ValidationError{Problems: problems}
}

// StatusOf extracts the HTTP status code carried by err, or 0 when the
// error is untagged.
func StatusOf(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 0
}
