package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"studio-backend/internal/editor/models"
	"studio-backend/internal/editor/repository"
	"studio-backend/internal/editor/service"
)

// ============================================================
// Project Handler
// ============================================================

type ProjectHandler struct {
	repo    *repository.Repository
	manager *service.EditorManager
}

func NewProjectHandler(repo *repository.Repository, manager *service.EditorManager) *ProjectHandler {
	return &ProjectHandler{repo: repo, manager: manager}
}

type createProjectRequest struct {
	Name string `json:"name"`
}

type projectSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Objects   int    `json:"objects"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Create stores a new project starting from the default scene.
func (h *ProjectHandler) Create(c fiber.Ctx) error {
	var req createProjectRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}
	if req.Name == "" {
		req.Name = "Untitled project"
	}

	project := &models.Project{
		Name:  req.Name,
		Scene: models.DefaultScene(),
	}
	if err := h.repo.Create(context.Background(), project); err != nil {
		log.Printf("[EDITOR] create project: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create project"})
	}

	log.Printf("[EDITOR] created project %s (%s)", project.ID, project.Name)
	return c.Status(http.StatusCreated).JSON(project)
}

// List returns project summaries for the dashboard.
func (h *ProjectHandler) List(c fiber.Ctx) error {
	projects, err := h.repo.List(context.Background())
	if err != nil {
		log.Printf("[EDITOR] list projects: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list projects"})
	}

	summaries := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, projectSummary{
			ID:        p.ID,
			Name:      p.Name,
			Objects:   len(p.Scene.Objects),
			CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
			UpdatedAt: p.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return c.JSON(summaries)
}

// Get returns one project with its full scene.
func (h *ProjectHandler) Get(c fiber.Ctx) error {
	project, err := h.repo.GetByID(context.Background(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load project"})
	}
	return c.JSON(project)
}

// Save writes the live editing session back to storage and marks the
// session saved.
func (h *ProjectHandler) Save(c fiber.Ctx) error {
	projectID := c.Params("id")
	session, ok := h.manager.Get(projectID)
	if !ok {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "project is not open"})
	}

	project := &models.Project{
		ID:    projectID,
		Name:  session.ProjectName(),
		Scene: session.SceneSnapshot(),
	}
	if err := h.repo.Save(context.Background(), project); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
		}
		log.Printf("[EDITOR] save project %s: %v", projectID, err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save project"})
	}

	session.MarkAsSaved()
	log.Printf("[EDITOR] saved project %s", projectID)
	return c.JSON(fiber.Map{"status": "saved"})
}

// Delete removes the project and closes its session if open.
func (h *ProjectHandler) Delete(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.repo.Delete(context.Background(), projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete project"})
	}

	h.manager.Close(projectID)
	return c.JSON(fiber.Map{"status": "deleted"})
}
