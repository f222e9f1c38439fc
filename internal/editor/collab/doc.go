package collab

import "sync"

// ============================================================
// Replicated Document
// ============================================================

// Doc is the local handle to the replicated scene document. It is an
// append-only log of opaque binary updates with change observers; how
// updates travel between peers is the provider's business, and how they
// merge into a scene is the view layer's. Each observer callback gets
// the update plus the origin it was applied with, so a provider can
// skip echoing back updates it received from the network itself.
type Doc struct {
	mu        sync.Mutex
	updates   [][]byte
	observers []func(update []byte, origin any)
	destroyed bool
}

func NewDoc() *Doc {
	return &Doc{}
}

// ApplyUpdate appends an update to the log and notifies observers.
// No-op after Destroy.
func (d *Doc) ApplyUpdate(update []byte, origin any) {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	stored := make([]byte, len(update))
	copy(stored, update)
	d.updates = append(d.updates, stored)
	observers := make([]func([]byte, any), len(d.observers))
	copy(observers, d.observers)
	d.mu.Unlock()

	for _, fn := range observers {
		fn(stored, origin)
	}
}

// Observe registers fn for every subsequent update.
func (d *Doc) Observe(fn func(update []byte, origin any)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.observers = append(d.observers, fn)
}

// Updates returns a copy of the full update log.
func (d *Doc) Updates() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.updates))
	for i, u := range d.updates {
		out[i] = make([]byte, len(u))
		copy(out[i], u)
	}
	return out
}

// Destroy drops the log and detaches all observers. Safe to call twice.
func (d *Doc) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed = true
	d.updates = nil
	d.observers = nil
}
