package handlers

import (
	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/services/pipeline"
	"tubebrief/services/video"

	"github.com/gofiber/fiber/v2"
)

type VideoHandler struct {
	videos   video.Service
	pipeline pipeline.Service
}

func NewVideoHandler(videos video.Service, pipelineService pipeline.Service) *VideoHandler {
	return &VideoHandler{videos: videos, pipeline: pipelineService}
}

func (h *VideoHandler) Create(c *fiber.Ctx) error {
	var req models.CreateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
		}
	}

	created, err := h.videos.Create(c.Context(), &req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    models.NewVideoResponse(created),
	})
}

func (h *VideoHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "ID is required",
		}
	}

	found, err := h.videos.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewVideoResponse(found),
	})
}

func (h *VideoHandler) Process(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "ID is required",
		}
	}

	processed, err := h.pipeline.Process(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewVideoResponse(processed),
	})
}

func (h *VideoHandler) Retry(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "ID is required",
		}
	}

	retried, err := h.pipeline.Retry(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewVideoResponse(retried),
	})
}

func (h *VideoHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "ID is required",
		}
	}

	var req models.UpdateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
		}
	}

	updated, err := h.videos.Update(c.Context(), id, &req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewVideoResponse(updated),
	})
}

func (h *VideoHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "ID is required",
		}
	}

	if err := h.videos.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
