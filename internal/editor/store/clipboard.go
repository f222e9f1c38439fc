package store

import (
	"fmt"

	"studio-backend/internal/editor/models"
)

// ============================================================
// Clipboard
// ============================================================

// CopyObject snapshots the object into the clipboard slot. Scene,
// selection and history are untouched; unknown ids are a no-op.
func (s *Store) CopyObject(id string) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	snapshot := s.scene.Objects[idx].Clone()
	s.clipboard = &snapshot
	name := snapshot.Name
	s.mu.Unlock()

	s.notify.Success(fmt.Sprintf("Copied %s to clipboard", name))
}

// CutObject snapshots the object into the clipboard, then removes it
// from the scene, clearing the selection and committing history.
func (s *Store) CutObject(id string) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	snapshot := s.scene.Objects[idx].Clone()
	s.clipboard = &snapshot

	s.scene.Objects = append(s.scene.Objects[:idx], s.scene.Objects[idx+1:]...)
	s.selectedObjectID = ""
	s.isModified = true
	s.saveToHistoryLocked(fmt.Sprintf("Cut %s", snapshot.Name))
	s.mu.Unlock()

	s.notify.Success(fmt.Sprintf("Cut %s to clipboard", snapshot.Name))
}

// PasteObject places a copy of the clipboard content under a fresh id,
// offset +1 on x, selects it and commits history. The clipboard is
// kept, so paste is repeatable.
func (s *Store) PasteObject() {
	s.mu.Lock()
	if s.clipboard == nil {
		s.mu.Unlock()
		s.notify.Error("Nothing to paste")
		return
	}

	pasted := s.clipboard.Clone()
	pasted.ID = fmt.Sprintf("%s-%s", pasted.Type, generateID())
	pasted.Name = pasted.Name + " (Copy)"
	pasted.Position.X++

	s.scene.Objects = append(s.scene.Objects, pasted)
	s.selectedObjectID = pasted.ID
	s.isModified = true
	s.saveToHistoryLocked(fmt.Sprintf("Pasted %s", pasted.Name))
	s.mu.Unlock()

	s.notify.Success(fmt.Sprintf("Pasted %s from clipboard", pasted.Name))
}

// Clipboard returns a copy of the clipboard content, if any.
func (s *Store) Clipboard() (models.SceneObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clipboard == nil {
		return models.SceneObject{}, false
	}
	return s.clipboard.Clone(), true
}
