// Package handler registers the scaffold's routes. The auth and user
// endpoints are placeholders returning canned data, wired so the
// observability pipeline has real traffic shapes to exercise.
package handler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tuncerburak97/iskele/internal/audit"
	"github.com/tuncerburak97/iskele/internal/metrics"
)

type Handler struct {
	logger    zerolog.Logger
	repo      audit.Repository // nil when auditing is disabled
	metrics   *metrics.MetricsCollector
	startedAt time.Time
}

func NewHandler(logger zerolog.Logger, repo audit.Repository, m *metrics.MetricsCollector) *Handler {
	return &Handler{
		logger:    logger,
		repo:      repo,
		metrics:   m,
		startedAt: time.Now(),
	}
}
