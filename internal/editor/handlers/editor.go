package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"studio-backend/internal/editor/models"
	"studio-backend/internal/editor/repository"
	"studio-backend/internal/editor/service"
	"studio-backend/internal/editor/store"
)

// ============================================================
// Editor Handler
// ============================================================

// EditorHandler exposes the store operations of an open project. Every
// mutation answers with the fresh observable state so the view layer
// re-renders from the response.
type EditorHandler struct {
	repo    *repository.Repository
	manager *service.EditorManager
}

func NewEditorHandler(repo *repository.Repository, manager *service.EditorManager) *EditorHandler {
	return &EditorHandler{repo: repo, manager: manager}
}

// statePayload is the observable surface of one editing session.
type statePayload struct {
	ProjectID        string                `json:"projectId"`
	ProjectName      string                `json:"projectName"`
	IsModified       bool                  `json:"isModified"`
	Objects          []models.SceneObject  `json:"objects"`
	SelectedObjectID string                `json:"selectedObjectId"`
	ActiveTool       models.Tool           `json:"activeTool"`
	HasClipboard     bool                  `json:"hasClipboard"`
	HistoryLength    int                   `json:"historyLength"`
	HistoryIndex     int                   `json:"historyIndex"`
	IsCollaborating  bool                  `json:"isCollaborating"`
	Collaborators    []models.Collaborator `json:"collaborators"`
}

func snapshot(s *store.Store) statePayload {
	_, hasClipboard := s.Clipboard()
	return statePayload{
		ProjectID:        s.ProjectID(),
		ProjectName:      s.ProjectName(),
		IsModified:       s.IsModified(),
		Objects:          s.Objects(),
		SelectedObjectID: s.SelectedObjectID(),
		ActiveTool:       s.ActiveTool(),
		HasClipboard:     hasClipboard,
		HistoryLength:    len(s.History()),
		HistoryIndex:     s.HistoryIndex(),
		IsCollaborating:  s.IsCollaborating(),
		Collaborators:    s.Collaborators(),
	}
}

// Open loads the project from storage into a live session.
func (h *EditorHandler) Open(c fiber.Ctx) error {
	project, err := h.repo.GetByID(context.Background(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load project"})
	}

	session := h.manager.Open(project)
	return c.JSON(snapshot(session))
}

// State returns the current observable state of an open project.
func (h *EditorHandler) State(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}
	return c.JSON(snapshot(session))
}

// ============================================================
// Scene operations
// ============================================================

type addObjectRequest struct {
	Type models.ObjectType `json:"type"`
}

func (h *EditorHandler) AddObject(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	var req addObjectRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if !req.Type.Valid() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unknown object type"})
	}

	session.AddObject(req.Type)
	return c.JSON(snapshot(session))
}

func (h *EditorHandler) UpdateObject(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	var patch models.ObjectPatch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	session.UpdateObject(c.Params("objectId"), patch)
	return c.JSON(snapshot(session))
}

func (h *EditorHandler) DeleteObject(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	session.DeleteObject(c.Params("objectId"))
	return c.JSON(snapshot(session))
}

func (h *EditorHandler) DuplicateObject(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	session.DuplicateObject(c.Params("objectId"))
	return c.JSON(snapshot(session))
}

// ============================================================
// Selection & tools
// ============================================================

type selectRequest struct {
	ID string `json:"id"`
}

func (h *EditorHandler) Select(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	var req selectRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}

	session.SelectObject(req.ID)
	return c.JSON(snapshot(session))
}

type toolRequest struct {
	Tool models.Tool `json:"tool"`
}

func (h *EditorHandler) SetTool(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	var req toolRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if !req.Tool.Valid() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unknown tool"})
	}

	session.SetActiveTool(req.Tool)
	return c.JSON(snapshot(session))
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *EditorHandler) Rename(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	var req renameRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.Name == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "name required"})
	}

	session.SetProjectName(req.Name)
	return c.JSON(snapshot(session))
}

// ============================================================
// Clipboard
// ============================================================

func (h *EditorHandler) Copy(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	session.CopyObject(c.Params("objectId"))
	return c.JSON(snapshot(session))
}

func (h *EditorHandler) Cut(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	session.CutObject(c.Params("objectId"))
	return c.JSON(snapshot(session))
}

func (h *EditorHandler) Paste(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	session.PasteObject()
	return c.JSON(snapshot(session))
}

// ============================================================
// History
// ============================================================

func (h *EditorHandler) Undo(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	session.Undo()
	return c.JSON(snapshot(session))
}

func (h *EditorHandler) Redo(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	session.Redo()
	return c.JSON(snapshot(session))
}

// ============================================================
// Transformations
// ============================================================

type transformStartRequest struct {
	ObjectID string `json:"objectId"`
}

func (h *EditorHandler) StartTransform(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	var req transformStartRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	session.StartTransformation(req.ObjectID)
	return c.JSON(snapshot(session))
}

type transformEndRequest struct {
	ObjectID    string `json:"objectId"`
	Description string `json:"description"`
}

func (h *EditorHandler) EndTransform(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	var req transformEndRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.Description == "" {
		req.Description = "Transformed object"
	}

	session.EndTransformation(req.ObjectID, req.Description)
	return c.JSON(snapshot(session))
}

// ============================================================
// Collaboration
// ============================================================

func (h *EditorHandler) StartCollaboration(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	session.StartCollaboration()
	return c.JSON(snapshot(session))
}

func (h *EditorHandler) StopCollaboration(c fiber.Ctx) error {
	session, ok := h.manager.Get(c.Params("id"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project is not open"})
	}

	session.StopCollaboration()
	return c.JSON(snapshot(session))
}
