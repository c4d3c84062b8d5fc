package goNebula

import (
	"sync"

	"go.uber.org/zap"
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Error(msg string)
	Warning(msg string)
}

// NoopNotifier discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) Error(string)   {}
func (NoopNotifier) Warning(string) {}

// LogNotifier routes notifications to a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Error(msg string) {
	if n.Logger != nil {
		n.Logger.Error(msg)
	}
}

func (n LogNotifier) Warning(msg string) {
	if n.Logger != nil {
		n.Logger.Warn(msg)
	}
}

// Notification is one message captured by RecordingNotifier.
type Notification struct {
	Level   string
	Message string
}

// RecordingNotifier keeps every notification in memory.
type RecordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (r *RecordingNotifier) Error(msg string) {
	r.add("error", msg)
}

func (r *RecordingNotifier) Warning(msg string) {
	r.add("warning", msg)
}

func (r *RecordingNotifier) add(level, msg string) {
	r.mu.Lock()
	r.items = append(r.items, Notification{Level: level, Message: msg})
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications in order.
func (r *RecordingNotifier) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Reset forgets recorded notifications.
func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}
