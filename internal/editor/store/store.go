package store

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"

	"studio-backend/internal/editor/collab"
	"studio-backend/internal/editor/models"
)

// ============================================================
// Editor Store
// ============================================================

// DefaultMaxHistory bounds the undo stack; the oldest entry is evicted
// once the window is full.
const DefaultMaxHistory = 50

// Store owns the live editing state of one open project: the scene
// graph, selection, active tool, clipboard, undo history and the
// collaboration session. All mutation goes through it so every change
// is observable and lands in history uniformly. One instance per
// editing session; construct with New.
type Store struct {
	mu sync.RWMutex

	projectID   string
	projectName string
	isModified  bool

	scene            models.Scene
	selectedObjectID string

	activeTool models.Tool

	clipboard *models.SceneObject

	history      []HistoryEntry
	historyIndex int
	maxHistory   int

	isTransforming  bool
	cachedTransform *models.SceneObject

	isCollaborating bool
	collaborators   []models.Collaborator
	provider        collab.Provider
	doc             *collab.Doc
	providers       collab.ProviderFactory

	notify Notifier
}

// New builds a store over the default scene. A nil notifier falls back
// to the process log; a nil provider factory leaves collaboration
// unavailable (StartCollaboration reports the failure).
func New(notify Notifier, providers collab.ProviderFactory) *Store {
	if notify == nil {
		notify = LogNotifier{}
	}
	s := &Store{
		projectName: "Untitled project",
		scene:       models.DefaultScene(),
		activeTool:  models.ToolSelect,
		maxHistory:  DefaultMaxHistory,
		providers:   providers,
		notify:      notify,
	}
	s.ClearHistory()
	return s
}

// ============================================================
// Project metadata
// ============================================================

func (s *Store) SetProjectID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectID = id
}

// SetProjectName renames the project; the rename is an undoable event.
func (s *Store) SetProjectName(name string) {
	s.mu.Lock()
	s.projectName = name
	s.isModified = true
	s.saveToHistoryLocked(fmt.Sprintf("Renamed project to %s", name))
	s.mu.Unlock()
}

func (s *Store) MarkAsModified() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isModified = true
}

func (s *Store) MarkAsSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isModified = false
}

// LoadProject replaces the live state with a saved project and makes
// the loaded state the undo floor, so loading itself is not undoable.
func (s *Store) LoadProject(p *models.Project) {
	s.mu.Lock()
	s.projectID = p.ID
	s.projectName = p.Name
	s.scene = p.Scene.Clone()
	s.selectedObjectID = ""
	s.clearHistoryLocked()
	s.isModified = false
	s.mu.Unlock()
}

// ============================================================
// Selection & tools
// ============================================================

// SelectObject sets the selection; the empty id clears it. Selection
// changes alone are not undoable and the id is not validated.
func (s *Store) SelectObject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedObjectID = id
}

func (s *Store) SetActiveTool(tool models.Tool) {
	s.mu.Lock()
	s.activeTool = tool
	s.mu.Unlock()
	s.notify.Success(fmt.Sprintf("Tool %s selected", tool))
}

// ============================================================
// Scene mutation
// ============================================================

// AddObject places a fresh object of the given type at the origin with
// a generated name and a random material color, selects it and commits
// history. Always succeeds.
func (s *Store) AddObject(objType models.ObjectType) {
	obj := models.SceneObject{
		ID:       fmt.Sprintf("%s-%s", objType, generateID()),
		Name:     displayName(objType),
		Type:     objType,
		Position: models.Vector3{},
		Rotation: models.Vector3{},
		Scale:    models.Vector3{X: 1, Y: 1, Z: 1},
		Material: models.Material{
			Color:     randomColor(),
			Metalness: 0.1,
			Roughness: 0.2,
			Opacity:   1.0,
		},
	}

	s.mu.Lock()
	s.scene.Objects = append(s.scene.Objects, obj)
	s.selectedObjectID = obj.ID
	s.isModified = true
	s.saveToHistoryLocked(fmt.Sprintf("Added %s", obj.Name))
	s.mu.Unlock()

	s.notify.Success(fmt.Sprintf("Added %s", obj.Name))
}

// UpdateObject merges the patch into the object, replacing each set
// top-level field wholesale. Unknown ids are a silent no-op. While a
// transformation is in progress the change applies live but the
// history commit is deferred to EndTransformation.
func (s *Store) UpdateObject(id string, patch models.ObjectPatch) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	patch.Apply(&s.scene.Objects[idx])
	s.isModified = true
	if !s.isTransforming {
		s.saveToHistoryLocked(fmt.Sprintf("Updated %s", id))
	}
	s.mu.Unlock()
}

// DeleteObject removes the object and clears the selection if it was
// selected. Unknown ids are a silent no-op.
func (s *Store) DeleteObject(id string) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	name := s.scene.Objects[idx].Name
	s.scene.Objects = append(s.scene.Objects[:idx], s.scene.Objects[idx+1:]...)
	s.selectedObjectID = ""
	s.isModified = true
	s.saveToHistoryLocked(fmt.Sprintf("Deleted %s", name))
	s.mu.Unlock()

	s.notify.Success(fmt.Sprintf("Deleted %s", name))
}

// DuplicateObject deep-copies the object under a fresh id, offset +1 on
// x, selects the copy and commits history. Unknown ids are a no-op.
func (s *Store) DuplicateObject(id string) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	source := s.scene.Objects[idx]
	dup := source.Clone()
	dup.ID = fmt.Sprintf("%s-%s", source.Type, generateID())
	dup.Name = source.Name + " (Copy)"
	dup.Position.X = source.Position.X + 1

	s.scene.Objects = append(s.scene.Objects, dup)
	s.selectedObjectID = dup.ID
	s.isModified = true
	s.saveToHistoryLocked(fmt.Sprintf("Duplicated %s", source.Name))
	s.mu.Unlock()

	s.notify.Success(fmt.Sprintf("Duplicated %s", source.Name))
}

// ============================================================
// Deferred-commit transformations
// ============================================================

// StartTransformation marks the beginning of a continuous drag gesture
// on the object. Until EndTransformation, updates apply live without
// flooding history. The pre-transform snapshot is cached so a cancel
// path could restore it; none is exposed today.
func (s *Store) StartTransformation(objectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(objectID)
	if idx < 0 {
		return
	}
	cached := s.scene.Objects[idx].Clone()
	s.isTransforming = true
	s.cachedTransform = &cached
}

// EndTransformation closes the gesture and commits exactly one history
// entry for the whole transform, labeled with description.
func (s *Store) EndTransformation(objectID string, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cachedTransform == nil {
		s.isTransforming = false
		return
	}
	s.isTransforming = false
	s.cachedTransform = nil
	s.saveToHistoryLocked(description)
}

// ============================================================
// Read surface
// ============================================================

func (s *Store) ProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectID
}

func (s *Store) ProjectName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectName
}

func (s *Store) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isModified
}

// Objects returns the scene objects in insertion order, deep-copied so
// callers never hold an alias into live state.
func (s *Store) Objects() []models.SceneObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene.Clone().Objects
}

// Object returns a deep copy of a single object by id.
func (s *Store) Object(id string) (models.SceneObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return models.SceneObject{}, false
	}
	return s.scene.Objects[idx].Clone(), true
}

// SceneSnapshot returns a deep copy of the whole scene, e.g. for
// persisting the project.
func (s *Store) SceneSnapshot() models.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene.Clone()
}

func (s *Store) SelectedObjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedObjectID
}

func (s *Store) ActiveTool() models.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTool
}

func (s *Store) IsTransforming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isTransforming
}

// ============================================================
// Helpers
// ============================================================

// indexOfLocked finds an object by id; -1 reports not-found so callers
// can decide whether the miss stays silent. Caller holds the lock.
func (s *Store) indexOfLocked(id string) int {
	for i := range s.scene.Objects {
		if s.scene.Objects[i].ID == id {
			return i
		}
	}
	return -1
}

// generateID yields a short opaque id chunk (7 hex chars off a UUID).
func generateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
}

// displayName builds the default "{Type} {shortId}" label.
func displayName(objType models.ObjectType) string {
	name := string(objType)
	return strings.ToUpper(name[:1]) + name[1:] + " " + generateID()[:4]
}

func randomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}
