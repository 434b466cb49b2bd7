package handlers

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/content"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FlagHandler struct {
	flagService    *services.FlagService
	contentService *services.FlaggedContentService
}

func NewFlagHandler(flagService *services.FlagService, contentService *services.FlaggedContentService) *FlagHandler {
	return &FlagHandler{flagService: flagService, contentService: contentService}
}

// SubmitFlag lets an authenticated user flag one content object.
func (h *FlagHandler) SubmitFlag(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SubmitFlagRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	fi, err := h.flagService.SubmitFlag(userID, req.ContentType, req.ObjectID, req.CreatorID, req.Comment, 0)
	if err != nil {
		return h.flagError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fi)
}

// Summary returns the aggregate flag state of one content object.
func (h *FlagHandler) Summary(c *fiber.Ctx) error {
	typeTag := c.Query("content_type")
	objectID, err := strconv.ParseUint(c.Query("object_id"), 10, 64)
	if typeTag == "" || err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "content_type and object_id are required",
		})
	}

	fc, err := h.contentService.GetForContent(content.Ref{Type: typeTag, ObjectID: objectID})
	if err != nil {
		if errors.Is(err, services.ErrFlaggedContentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch flagged content",
		})
	}

	return c.JSON(h.summary(fc))
}

// ListFlagged is the admin view over flagged content, optionally filtered
// by model tag and status.
func (h *FlagHandler) ListFlagged(c *fiber.Ctx) error {
	typeTag := c.Query("model", "")
	status := c.QueryInt("status", 0)
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	if limit > 100 {
		limit = 100
	}

	items, total, err := h.contentService.List(typeTag, status, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch flagged content",
		})
	}

	summaries := make([]dto.FlagSummaryResponse, len(items))
	for i := range items {
		summaries[i] = h.summary(&items[i])
	}

	return c.JSON(fiber.Map{
		"flagged": summaries,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// ListInstances returns the individual flag events of one aggregate.
func (h *FlagHandler) ListInstances(c *fiber.Ctx) error {
	fcID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid flagged content ID",
		})
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit > 100 {
		limit = 100
	}

	items, total, err := h.flagService.ListInstances(fcID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch flag instances",
		})
	}

	return c.JSON(fiber.Map{
		"instances": items,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// Moderate assigns a new moderation status to flagged content. It goes
// through the add-flag path, so the change is recorded as a flag instance
// carrying the new status.
func (h *FlagHandler) Moderate(c *fiber.Ctx) error {
	moderatorID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	fcID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid flagged content ID",
		})
	}

	var req dto.ModerateRequest
	if err := c.BodyParser(&req); err != nil || req.Status == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A non-zero status is required",
		})
	}

	fc, err := h.contentService.GetByID(fcID)
	if err != nil {
		if errors.Is(err, services.ErrFlaggedContentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch flagged content",
		})
	}

	ref := content.Ref{Type: fc.ContentType, ObjectID: fc.ObjectID}
	if _, err := h.flagService.Add(moderatorID, ref, services.AddOptions{
		Comment: req.Comment,
		Status:  req.Status,
	}); err != nil {
		return h.flagError(c, err)
	}

	updated, err := h.contentService.GetByID(fcID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch flagged content",
		})
	}
	return c.JSON(h.summary(updated))
}

func (h *FlagHandler) summary(fc *models.FlaggedContent) dto.FlagSummaryResponse {
	return dto.FlagSummaryResponse{
		ID:            fc.ID,
		ContentType:   fc.ContentType,
		ObjectID:      fc.ObjectID,
		Status:        fc.Status,
		StatusDisplay: h.contentService.StatusDisplay(fc),
		Count:         fc.Count,
		UpdatedAt:     fc.UpdatedAt,
	}
}

func (h *FlagHandler) flagError(c *fiber.Ctx, err error) error {
	var already *services.AlreadyFlaggedError
	switch {
	case errors.As(err, &already):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: already.Error(),
		})
	case errors.Is(err, services.ErrContentOverFlagged):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrModelNotFlaggable),
		errors.Is(err, services.ErrInvalidComment),
		errors.Is(err, content.ErrUnknownContentType):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record flag",
		})
	}
}
