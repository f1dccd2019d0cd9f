package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/devotionalai/api/internal/model"
	"github.com/devotionalai/api/internal/service"
	"github.com/devotionalai/api/internal/store"
	"github.com/devotionalai/api/pkg/response"
)

type AuthHandler struct {
	service   *service.AuthService
	validator *validator.Validate
}

func NewAuthHandler(svc *service.AuthService, v *validator.Validate) *AuthHandler {
	return &AuthHandler{
		service:   svc,
		validator: v,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	tokens, err := h.service.Register(c.Context(), &req)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return response.Conflict(c, "Email already registered")
		}
		return response.ServiceError(c, "Failed to register")
	}

	return response.Created(c, tokens)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	tokens, err := h.service.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return response.Unauthorized(c, "Incorrect email or password")
		}
		return response.ServiceError(c, "Failed to log in")
	}

	return response.OK(c, tokens)
}
