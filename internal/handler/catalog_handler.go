package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devotionalai/api/internal/model"
	"github.com/devotionalai/api/internal/service"
	"github.com/devotionalai/api/pkg/response"
)

type CatalogHandler struct {
	service *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// Voices handles GET /api/voices?language=
func (h *CatalogHandler) Voices(c *fiber.Ctx) error {
	language := model.Language(c.Query("language", string(model.LanguageSanskrit)))
	return response.OK(c, fiber.Map{"voices": h.service.Voices(language)})
}

// Templates handles GET /api/templates
func (h *CatalogHandler) Templates(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"templates": h.service.Templates()})
}
