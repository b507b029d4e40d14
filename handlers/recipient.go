package handlers

import (
	"time"

	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RecipientHandler struct {
	recipients repository.RecipientRepository
}

func NewRecipientHandler(recipients repository.RecipientRepository) *RecipientHandler {
	return &RecipientHandler{recipients: recipients}
}

func (h *RecipientHandler) Create(c *fiber.Ctx) error {
	var req struct {
		ChatID string `json:"chat_id"`
		Name   string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
		}
	}
	if req.ChatID == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "chat_id is required",
		}
	}

	recipient := &models.Recipient{
		ID:        uuid.New().String(),
		ChatID:    req.ChatID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := h.recipients.Create(c.Context(), recipient); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    recipient,
	})
}

func (h *RecipientHandler) Subscribe(c *fiber.Ctx) error {
	id := c.Params("id")
	var req struct {
		SourceID string `json:"source_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.SourceID == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "source_id is required",
		}
	}

	if _, err := h.recipients.Find(c.Context(), id); err != nil {
		return err
	}
	if err := h.recipients.Subscribe(c.Context(), id, req.SourceID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
