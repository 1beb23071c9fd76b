package ratelimit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuncerburak97/iskele/internal/apierror"
	"github.com/tuncerburak97/iskele/internal/config"
	"github.com/tuncerburak97/iskele/internal/logger"
)

func newLimitedApp(cfg *config.RateLimitConfig) (*fiber.App, *Service) {
	svc := NewService(cfg, NewMemoryStore(time.Minute))

	app := fiber.New(fiber.Config{
		ErrorHandler: apierror.NewNormalizer(logger.Nop(), false).Handle,
	})
	app.Use(Middleware(svc))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, svc
}

func globalConfig(requests int) *config.RateLimitConfig {
	cfg := &config.RateLimitConfig{Enabled: true}
	cfg.Global.Requests = requests
	cfg.Global.Window = time.Minute
	return cfg
}

func TestMiddleware_AllowsWithinLimit(t *testing.T) {
	app, svc := newLimitedApp(globalConfig(2))
	defer svc.Close()

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(HeaderRateLimit))
		assert.NotEmpty(t, resp.Header.Get(HeaderRateRemaining))
	}
}

func TestMiddleware_BlocksOverLimit(t *testing.T) {
	app, svc := newLimitedApp(globalConfig(1))
	defer svc.Close()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get(HeaderRateRemaining))
	assert.NotEmpty(t, resp.Header.Get(HeaderRetryAfter))

	// The breach renders through the centralized error envelope.
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope apierror.Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "Too Many Requests", envelope.Error)
	assert.Equal(t, "Rate limit exceeded", envelope.Message)
}

func TestService_GlobalLimitSpansRoutes(t *testing.T) {
	app, svc := newLimitedApp(globalConfig(1))
	defer svc.Close()
	app.Get("/other", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// One shared window: a different route counts against the same limit.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/other", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestService_DisabledNeverLimits(t *testing.T) {
	cfg := globalConfig(0)
	cfg.Enabled = false
	app, svc := newLimitedApp(cfg)
	defer svc.Close()

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestService_WhitelistBypassesPerIPLimit(t *testing.T) {
	cfg := globalConfig(1000)
	cfg.PerIP.Enabled = true
	cfg.PerIP.Requests = 1
	cfg.PerIP.Window = time.Minute
	// fiber's test transport reports 0.0.0.0 as the client address.
	cfg.PerIP.WhiteList = []string{"0.0.0.0"}

	app, svc := newLimitedApp(cfg)
	defer svc.Close()

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestService_PerIPLimit(t *testing.T) {
	cfg := globalConfig(1000)
	cfg.PerIP.Enabled = true
	cfg.PerIP.Requests = 1
	cfg.PerIP.Window = time.Minute

	app, svc := newLimitedApp(cfg)
	defer svc.Close()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestKey_String(t *testing.T) {
	key := &Key{IP: "1.2.3.4", Path: "/api/v1/users", Method: "GET"}
	assert.Equal(t, "GET:/api/v1/users:1.2.3.4", key.String())
	assert.Equal(t, "GET:/api/v1/users:1.2.3.4:ip", key.withSuffix("ip"))
}
