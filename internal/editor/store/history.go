package store

import (
	"fmt"
	"time"

	"studio-backend/internal/editor/models"
)

// ============================================================
// History Engine
// ============================================================

// HistoryEntry is an immutable checkpoint of scene + selection. Entries
// are deep copies; later edits to the live scene never reach back into
// one.
type HistoryEntry struct {
	Scene            models.Scene `json:"scene"`
	SelectedObjectID string       `json:"selectedObjectId,omitempty"`
	Description      string       `json:"description"`
	Timestamp        time.Time    `json:"timestamp"`
}

// SaveToHistory commits the current state as a new checkpoint. Any
// redo-able future beyond the cursor is discarded, and the oldest entry
// is evicted once the window is full.
func (s *Store) SaveToHistory(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveToHistoryLocked(description)
}

func (s *Store) saveToHistoryLocked(description string) {
	entry := HistoryEntry{
		Scene:            s.scene.Clone(),
		SelectedObjectID: s.selectedObjectID,
		Description:      description,
		Timestamp:        time.Now(),
	}

	s.history = append(s.history[:s.historyIndex+1], entry)
	if len(s.history) > s.maxHistory {
		s.history = s.history[1:]
	}
	s.historyIndex = len(s.history) - 1
}

// Undo steps the cursor back one checkpoint and restores it wholesale.
// At the floor it reports "nothing to undo" and changes nothing.
func (s *Store) Undo() {
	s.mu.Lock()
	if s.historyIndex <= 0 || len(s.history) == 0 {
		s.mu.Unlock()
		s.notify.Error("Nothing to undo")
		return
	}

	undone := s.history[s.historyIndex].Description
	s.historyIndex--
	s.restoreLocked(s.history[s.historyIndex])
	s.mu.Unlock()

	s.notify.Success(fmt.Sprintf("Undone: %s", undone))
}

// Redo steps the cursor forward one checkpoint and restores it. At the
// end it reports "nothing to redo" and changes nothing.
func (s *Store) Redo() {
	s.mu.Lock()
	if s.historyIndex >= len(s.history)-1 {
		s.mu.Unlock()
		s.notify.Error("Nothing to redo")
		return
	}

	s.historyIndex++
	entry := s.history[s.historyIndex]
	s.restoreLocked(entry)
	s.mu.Unlock()

	s.notify.Success(fmt.Sprintf("Redone: %s", entry.Description))
}

// ClearHistory resets the stack to a single entry for the current live
// state, making it the undo floor. Called after a project load so that
// loading itself cannot be undone.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearHistoryLocked()
}

func (s *Store) clearHistoryLocked() {
	s.history = []HistoryEntry{{
		Scene:            s.scene.Clone(),
		SelectedObjectID: s.selectedObjectID,
		Description:      "Initial state",
		Timestamp:        time.Now(),
	}}
	s.historyIndex = 0
}

// restoreLocked replaces live scene and selection with a deep copy of
// the entry, never a partial merge. Caller holds the lock.
func (s *Store) restoreLocked(entry HistoryEntry) {
	s.scene = entry.Scene.Clone()
	s.selectedObjectID = entry.SelectedObjectID
	s.isModified = true
}

// History returns the checkpoint stack, oldest first. Each entry's
// scene is deep-copied so callers cannot reach back into a stored
// checkpoint.
func (s *Store) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, len(s.history))
	for i, entry := range s.history {
		entry.Scene = entry.Scene.Clone()
		out[i] = entry
	}
	return out
}

// HistoryIndex returns the cursor position into History.
func (s *Store) HistoryIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyIndex
}
