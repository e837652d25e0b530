package handler

import (
	"context"

	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/domain"
	"github.com/arturoeanton/go-novelty-analyzer-ollama/internal/middleware"
	"github.com/gofiber/fiber/v3"
)

// ArchiveStore is the persistence surface the archive endpoints need.
type ArchiveStore interface {
	ListArchiveProjects(ctx context.Context) ([]domain.ArchiveProject, error)
	CreateArchiveProject(ctx context.Context, p *domain.ArchiveProject) (*domain.ArchiveProject, error)
}

// ArchiveHandler manages the internal project archive that feeds the index.
type ArchiveHandler struct {
	store ArchiveStore
}

// NewArchiveHandler creates a new archive handler.
func NewArchiveHandler(store ArchiveStore) *ArchiveHandler {
	return &ArchiveHandler{store: store}
}

// Register sets up archive routes.
func (h *ArchiveHandler) Register(router fiber.Router) {
	archive := router.Group("/archive")
	archive.Get("/projects", h.List)
	archive.Post("/projects", h.Create)
}

// List returns every archive project.
func (h *ArchiveHandler) List(c fiber.Ctx) error {
	projects, err := h.store.ListArchiveProjects(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": projects})
}

// Create adds a project to the archive. It is picked up by the next
// internal index sync.
func (h *ArchiveHandler) Create(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
	}

	var p domain.ArchiveProject
	if err := c.Bind().JSON(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}
	if p.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "title is required"})
	}

	created, err := h.store.CreateArchiveProject(c.Context(), &p)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}
