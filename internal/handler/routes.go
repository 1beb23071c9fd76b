package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tuncerburak97/iskele/internal/apierror"
)

// Register mounts every route on the app. The trailing catch-all turns
// unmatched paths into a normalized 404 envelope.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.health)
	app.Get("/health/ready", h.ready)
	app.Get("/metrics", h.metricsSnapshot)

	v1 := app.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Post("/register", h.register)
	auth.Post("/login", h.login)
	auth.Post("/refresh", h.refresh)
	auth.Post("/logout", h.logout)

	users := v1.Group("/users")
	users.Get("/me", h.currentUser)
	users.Get("/", h.listUsers)
	users.Get("/:id", h.getUser)
	users.Patch("/:id", h.updateUser)
	users.Delete("/:id", h.deleteUser)

	app.Use(func(c *fiber.Ctx) error {
		return apierror.NotFound("")
	})
}
