package validate

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuncerburak97/iskele/internal/apierror"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	return body
}

func TestRequired(t *testing.T) {
	rule := Required("/email")

	assert.Nil(t, rule(decode(t, `{"email":"a@b.c"}`)))

	p := rule(decode(t, `{}`))
	require.NotNil(t, p)
	assert.Equal(t, "/email", p.Field)
	assert.Equal(t, "is required", p.Message)

	assert.NotNil(t, rule(decode(t, `{"email":null}`)))
}

func TestString(t *testing.T) {
	rule := String("/email")

	assert.Nil(t, rule(decode(t, `{"email":"a@b.c"}`)))
	assert.Nil(t, rule(decode(t, `{}`)), "absence is Required's job")

	p := rule(decode(t, `{"email":42}`))
	require.NotNil(t, p)
	assert.Equal(t, "must be string", p.Message)
	assert.Equal(t, float64(42), p.Provided)
}

func TestMinLength(t *testing.T) {
	rule := MinLength("/password", 8)

	assert.Nil(t, rule(decode(t, `{"password":"longenough"}`)))
	assert.Nil(t, rule(decode(t, `{}`)))

	p := rule(decode(t, `{"password":"short"}`))
	require.NotNil(t, p)
	assert.Equal(t, "/password", p.Field)
	assert.Equal(t, "short", p.Provided)
}

func TestOneOf(t *testing.T) {
	rule := OneOf("/role", "user", "admin")

	assert.Nil(t, rule(decode(t, `{"role":"admin"}`)))
	assert.Nil(t, rule(decode(t, `{}`)))

	p := rule(decode(t, `{"role":"root"}`))
	require.NotNil(t, p)
	assert.Equal(t, "root", p.Provided)
	assert.Equal(t, []string{"user", "admin"}, p.Expected)
}

func TestLookup_NestedField(t *testing.T) {
	rule := Required("/profile/email")

	assert.Nil(t, rule(decode(t, `{"profile":{"email":"a@b.c"}}`)))
	assert.NotNil(t, rule(decode(t, `{"profile":{}}`)))
	assert.NotNil(t, rule(decode(t, `{"profile":"flat"}`)))
}

func TestBody_CollectsProblemsInOrder(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		err := Body(c,
			Required("/email"),
			String("/name"),
		)

		var ve *apierror.ValidationError
		require.True(t, errors.As(err, &ve))
		require.Len(t, ve.Problems, 2)
		assert.Equal(t, "/email", ve.Problems[0].Field)
		assert.Equal(t, "/name", ve.Problems[1].Field)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":1}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	_, err := app.Test(req)
	require.NoError(t, err)
}

func TestBody_InvalidJSON(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		err := Body(c, Required("/email"))

		var ae *apierror.Error
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, fiber.StatusBadRequest, ae.Code)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	_, err := app.Test(req)
	require.NoError(t, err)
}

func TestBody_EmptyBodyStillRunsRules(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		err := Body(c, Required("/email"))

		var ve *apierror.ValidationError
		require.True(t, errors.As(err, &ve))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
}

func TestBody_ValidPayload(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		require.NoError(t, Body(c,
			Required("/email"),
			String("/email"),
			MinLength("/password", 8),
		))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c","password":"longenough"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
