package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (h *Handler) health(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// ready reports whether downstream dependencies answer. Without a
// configured database the scaffold is trivially ready.
func (h *Handler) ready(c *fiber.Ctx) error {
	if h.repo != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		if err := h.repo.Ping(ctx); err != nil {
			h.logger.Error().Err(err).Msg("Readiness check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}

	return c.JSON(fiber.Map{"status": "ready"})
}

func (h *Handler) metricsSnapshot(c *fiber.Ctx) error {
	body, err := h.metrics.GetMetricsJSON()
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
