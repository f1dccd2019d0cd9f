package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/devotionalai/api/internal/middleware"
	"github.com/devotionalai/api/internal/model"
	"github.com/devotionalai/api/internal/service"
	"github.com/devotionalai/api/internal/store"
	"github.com/devotionalai/api/pkg/response"
)

type GenerationHandler struct {
	service   *service.GenerationService
	validator *validator.Validate
}

func NewGenerationHandler(svc *service.GenerationService, v *validator.Validate) *GenerationHandler {
	return &GenerationHandler{
		service:   svc,
		validator: v,
	}
}

// Submit handles POST /api/generations
func (h *GenerationHandler) Submit(c *fiber.Ctx) error {
	var req model.GenerationCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	gen, err := h.service.Submit(c.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrQuotaExceeded):
			return response.QuotaExceeded(c, "Generation limit reached. Please upgrade your plan.")
		case errors.Is(err, service.ErrInvalidRequest):
			return response.ValidationError(c, err.Error(), nil)
		case errors.Is(err, store.ErrNotFound):
			return response.Unauthorized(c, "Unknown user")
		default:
			return response.ServiceError(c, "Failed to create generation")
		}
	}

	return response.Created(c, gen)
}

// Get handles GET /api/generations/:id
func (h *GenerationHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Generation ID is required", nil)
	}

	gen, err := h.service.Get(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Generation not found")
		}
		return response.ServiceError(c, "Failed to load generation")
	}

	return response.OK(c, gen)
}

// List handles GET /api/generations
func (h *GenerationHandler) List(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)

	result, err := h.service.List(c.Context(), middleware.GetUserID(c), offset, limit)
	if err != nil {
		return response.ServiceError(c, "Failed to list generations")
	}

	return response.OK(c, result)
}

// formatValidationErrors turns validator errors into field-level details.
func formatValidationErrors(err error) []fiber.Map {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	details := make([]fiber.Map, 0, len(ve))
	for _, fe := range ve {
		details = append(details, fiber.Map{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return details
}
