package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	recoverer "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/tuncerburak97/iskele/internal/apierror"
	"github.com/tuncerburak97/iskele/internal/audit"
	"github.com/tuncerburak97/iskele/internal/config"
	"github.com/tuncerburak97/iskele/internal/handler"
	"github.com/tuncerburak97/iskele/internal/logger"
	"github.com/tuncerburak97/iskele/internal/metrics"
	"github.com/tuncerburak97/iskele/internal/ratelimit"
	"github.com/tuncerburak97/iskele/internal/repository"
	"github.com/tuncerburak97/iskele/internal/trace"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Configure logging
	appLogger := logger.New(cfg.Log.Level, cfg.Log.Format)

	// Initialize metrics collector
	metricsCollector := metrics.GetMetricsCollector("iskele", "iskele_api")

	// Initialize the audit pipeline if enabled
	var (
		repo     audit.Repository
		auditSvc *audit.Service
	)
	if cfg.Audit.Enabled {
		repo, err = repository.NewRepository(&cfg.DB, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("Failed to initialize audit repository")
		}
		auditSvc = audit.NewService(repo, appLogger, metricsCollector,
			cfg.Audit.Workers, cfg.Audit.BufferSize, cfg.Audit.FlushInterval)
	}

	// Initialize rate limiter if enabled
	var rateLimiter *ratelimit.Service
	if cfg.RateLimit.Enabled {
		var store ratelimit.Store
		if cfg.RateLimit.Storage.Type == "redis" {
			store, err = ratelimit.NewRedisStore(
				appLogger,
				cfg.RateLimit.Storage.Redis.Host,
				cfg.RateLimit.Storage.Redis.Port,
				cfg.RateLimit.Storage.Redis.Password,
				cfg.RateLimit.Storage.Redis.DB,
				cfg.RateLimit.Storage.Redis.Timeout,
			)
			if err != nil {
				appLogger.Fatal().Err(err).Msg("Failed to create rate limit store")
			}
		} else {
			store = ratelimit.NewMemoryStore(5 * time.Minute)
		}
		rateLimiter = ratelimit.NewService(&cfg.RateLimit, store)
	}

	// Create Fiber app with the centralized error handler
	normalizer := apierror.NewNormalizer(appLogger, cfg.Server.IsProduction())
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: normalizer.Handle,
	})

	// Middleware chain: tracing and metrics first so every request is
	// observed, panic recovery innermost so panics surface as errors.
	app.Use(trace.New(appLogger))
	app.Use(metrics.Middleware(metricsCollector))

	if cfg.Security.HelmetEnabled {
		app.Use(helmet.New())
	}
	if cfg.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowMethods:     cfg.CORS.AllowMethods,
			AllowHeaders:     cfg.CORS.AllowHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
		}))
	}

	if auditSvc != nil {
		app.Use(audit.Middleware(auditSvc))
	}

	app.Use(recoverer.New(recoverer.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			appLogger.Error().
				Str("request_id", trace.RequestID(c)).
				Interface("panic", e).
				Bytes("stack", debug.Stack()).
				Msg("Panic recovered")
		},
	}))

	if rateLimiter != nil {
		app.Use(ratelimit.Middleware(rateLimiter))
	}

	// Set up routes
	h := handler.NewHandler(appLogger, repo, metricsCollector)
	h.Register(app)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		appLogger.Error().Err(err).Msg("Failed to shutdown server")
	}

	// Close resources
	if auditSvc != nil {
		auditSvc.Shutdown()
	}

	if rateLimiter != nil {
		if err := rateLimiter.Close(); err != nil {
			appLogger.Error().Err(err).Msg("Failed to close rate limiter")
		}
	}
}
