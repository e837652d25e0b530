package handler

import (
	"errors"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/middleware"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/port"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

// NoveltyHandler exposes the novelty analysis endpoints.
type NoveltyHandler struct {
	noveltyService *service.NoveltyService
}

// NewNoveltyHandler creates a new novelty handler.
func NewNoveltyHandler(noveltyService *service.NoveltyService) *NoveltyHandler {
	return &NoveltyHandler{noveltyService: noveltyService}
}

// Register sets up novelty routes.
func (h *NoveltyHandler) Register(router fiber.Router) {
	novelty := router.Group("/novelty")
	novelty.Post("/analyze", h.Analyze)
	novelty.Get("/analysis/:id", h.GetAnalysis)
	novelty.Post("/reindex", h.Reindex)
}

// Analyze scores a proposed idea against prior work.
func (h *NoveltyHandler) Analyze(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}

	var req service.AnalyzeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}

	result, err := h.noveltyService.Analyze(c.Context(), uc.UserID, req)
	if err != nil {
		if errors.Is(err, port.ErrEmptyInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "provide a title or abstract for analysis"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// GetAnalysis returns a previously computed analysis owned by the caller.
func (h *NoveltyHandler) GetAnalysis(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}

	result, err := h.noveltyService.GetAnalysis(c.Context(), c.Params("id"), uc.UserID)
	if err != nil {
		if errors.Is(err, port.ErrAnalysisNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "analysis not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// Reindex triggers the requested index refreshes. Admin only.
func (h *NoveltyHandler) Reindex(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}
	if uc.Role != domain.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "admin role required"})
	}

	var req service.ReindexRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}

	if err := h.noveltyService.Reindex(c.Context(), req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "message": "reindex triggered"})
}
