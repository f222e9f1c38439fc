package collab

import "studio-backend/internal/editor/models"

// ============================================================
// Provider
// ============================================================

// Provider is a live transport for one collaboration room. The store
// only ever drives this interface; the websocket implementation below
// is the default, and tests substitute their own.
type Provider interface {
	// SetLocalState publishes the local peer's presence record.
	SetLocalState(peer models.Collaborator)

	// OnRosterChange registers the roster callback. Every notification
	// carries the complete roster; the callback replaces, never merges.
	// If a roster arrived before registration it is delivered at once.
	OnRosterChange(fn func(peers []models.Collaborator))

	// Disconnect leaves the room and releases the connection. Safe to
	// call more than once.
	Disconnect()
}

// ProviderFactory builds a connected Provider for the given room,
// wired to relay the doc's local updates. Construction failure keeps
// the session Idle.
type ProviderFactory func(room string, doc *Doc) (Provider, error)
