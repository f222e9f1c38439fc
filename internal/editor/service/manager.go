package service

import (
	"sync"

	"studio-backend/internal/editor/collab"
	"studio-backend/internal/editor/models"
	"studio-backend/internal/editor/store"
)

// ============================================================
// Editor Manager
// ============================================================

// EditorManager tracks one live store per open project. Stores are
// created on project open and dropped on close or delete; every store
// shares the notifier and provider factory the manager was built with.
type EditorManager struct {
	mu       sync.Mutex
	sessions map[string]*store.Store

	notify    store.Notifier
	providers collab.ProviderFactory
}

func NewEditorManager(notify store.Notifier, providers collab.ProviderFactory) *EditorManager {
	return &EditorManager{
		sessions:  make(map[string]*store.Store),
		notify:    notify,
		providers: providers,
	}
}

// Open returns the live store for the project, hydrating a fresh one
// from the saved state when the project is not open yet.
func (m *EditorManager) Open(p *models.Project) *store.Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[p.ID]; ok {
		return s
	}
	s := store.New(m.notify, m.providers)
	s.LoadProject(p)
	m.sessions[p.ID] = s
	return s
}

// Get returns the live store for the project, if it is open.
func (m *EditorManager) Get(projectID string) (*store.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[projectID]
	return s, ok
}

// Close drops the project's session, stopping any collaboration first.
func (m *EditorManager) Close(projectID string) {
	m.mu.Lock()
	s, ok := m.sessions[projectID]
	delete(m.sessions, projectID)
	m.mu.Unlock()

	if ok {
		s.StopCollaboration()
	}
}
