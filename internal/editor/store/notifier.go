package store

import "log"

// ============================================================
// Notifier
// ============================================================

// Notifier receives user-facing outcomes: confirmations, "nothing to
// undo", clipboard misses. The store never returns errors for ordinary
// misuse; everything surfaces here instead.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier is the default sink: tagged lines in the process log.
type LogNotifier struct{}

func (LogNotifier) Success(message string) {
	log.Printf("[EDITOR] %s", message)
}

func (LogNotifier) Error(message string) {
	log.Printf("[EDITOR] error: %s", message)
}
