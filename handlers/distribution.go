package handlers

import (
	"tubebrief/errors"
	"tubebrief/repository"
	"tubebrief/services/distribution"

	"github.com/gofiber/fiber/v2"
)

type DistributionHandler struct {
	service   distribution.Service
	summaries repository.SummaryRepository
}

func NewDistributionHandler(service distribution.Service, summaries repository.SummaryRepository) *DistributionHandler {
	return &DistributionHandler{service: service, summaries: summaries}
}

func (h *DistributionHandler) Distribute(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "ID is required",
		}
	}

	result, err := h.service.Distribute(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

func (h *DistributionHandler) GetSummary(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return &errors.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "ID is required",
		}
	}

	summary, err := h.summaries.Find(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}
