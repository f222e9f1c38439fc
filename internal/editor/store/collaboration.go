package store

import (
	"fmt"
	"log"

	"studio-backend/internal/editor/collab"
	"studio-backend/internal/editor/models"
)

// ============================================================
// Collaboration Session
// ============================================================

// StartCollaboration opens a collaboration session for the project's
// room: a replicated doc handle, a connected provider, and the local
// presence record. Calling while a session is already active is a
// no-op. Provider construction failure is reported and leaves the
// session idle.
func (s *Store) StartCollaboration() {
	s.mu.Lock()
	if s.isCollaborating {
		s.mu.Unlock()
		return
	}

	roomID := s.projectID
	if roomID == "" {
		roomID = "project-" + generateID()
	}
	factory := s.providers

	// Mark active before releasing the lock so a concurrent start
	// cannot slip in while the provider is dialing.
	s.isCollaborating = true
	s.mu.Unlock()

	doc := collab.NewDoc()
	var provider collab.Provider
	var err error
	if factory == nil {
		err = fmt.Errorf("no provider configured")
	} else {
		provider, err = factory("studio-"+roomID, doc)
	}
	if err != nil {
		log.Printf("[COLLAB] start: %v", err)
		doc.Destroy()
		s.mu.Lock()
		s.isCollaborating = false
		s.mu.Unlock()
		s.notify.Error("Failed to start collaboration")
		return
	}

	s.mu.Lock()
	if !s.isCollaborating {
		// Stopped while the provider was dialing; tear down what the
		// dial produced and stay idle.
		s.mu.Unlock()
		provider.Disconnect()
		doc.Destroy()
		return
	}
	s.provider = provider
	s.doc = doc
	s.mu.Unlock()

	provider.SetLocalState(models.Collaborator{
		ID:    generateID(),
		Name:  "Me",
		Color: randomColor(),
	})
	provider.OnRosterChange(func(peers []models.Collaborator) {
		// Wholesale replace; readers never see a half-updated roster.
		// Ignored once this provider is no longer the session's.
		s.mu.Lock()
		if s.provider == provider {
			s.collaborators = peers
		}
		s.mu.Unlock()
	})

	s.notify.Success("Collaboration started - share the URL to collaborate")
}

// StopCollaboration tears the session down: provider disconnected, doc
// destroyed, roster cleared. Idempotent, and safe even if start never
// finished wiring the handles.
func (s *Store) StopCollaboration() {
	s.mu.Lock()
	provider := s.provider
	doc := s.doc
	wasActive := s.isCollaborating
	s.provider = nil
	s.doc = nil
	s.isCollaborating = false
	s.collaborators = nil
	s.mu.Unlock()

	if provider != nil {
		provider.Disconnect()
	}
	if doc != nil {
		doc.Destroy()
	}
	if wasActive {
		s.notify.Success("Collaboration stopped")
	}
}

func (s *Store) IsCollaborating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isCollaborating
}

// Collaborators returns the current roster of connected peers.
func (s *Store) Collaborators() []models.Collaborator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Collaborator, len(s.collaborators))
	copy(out, s.collaborators)
	return out
}

// Doc exposes the replicated document handle while collaborating, nil
// otherwise.
func (s *Store) Doc() *collab.Doc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}
