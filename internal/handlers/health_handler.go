package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/content"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	registry *content.Registry
}

func NewHealthHandler(registry *content.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DB:          dbStatus,
		SourceCount: h.registry.Count(),
	})
}
