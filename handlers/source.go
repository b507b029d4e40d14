package handlers

import (
	"time"

	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SourceHandler struct {
	sources repository.SourceRepository
}

func NewSourceHandler(sources repository.SourceRepository) *SourceHandler {
	return &SourceHandler{sources: sources}
}

func (h *SourceHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name      string `json:"name"`
		ChannelID string `json:"channel_id"`
		URL       string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
		}
	}
	if req.ChannelID == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "channel_id is required",
		}
	}

	source := &models.Source{
		ID:        uuid.New().String(),
		Name:      req.Name,
		ChannelID: req.ChannelID,
		URL:       req.URL,
		CreatedAt: time.Now(),
	}
	if err := h.sources.Create(c.Context(), source); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    source,
	})
}

func (h *SourceHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "ID is required",
		}
	}

	source, err := h.sources.Find(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    source,
	})
}
