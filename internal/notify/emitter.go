package notify

import (
	"github.com/google/uuid"
)

// Emitter is the well-known entry point application code uses to surface
// toasts. It owns id generation and default-duration policy; callers never
// reference the created record directly.
type Emitter struct {
	hub *Hub
}

// NewEmitter wires an emitter to the hub it appends into.
func NewEmitter(hub *Hub) *Emitter {
	return &Emitter{hub: hub}
}

// Emit constructs a notification of the given kind and appends it.
// Message may be empty.
func (e *Emitter) Emit(kind Kind, title, message string) {
	if !kind.IsValid() {
		kind = KindInfo
	}
	e.hub.Append(Notification{
		ID:       uuid.NewString(),
		Kind:     kind,
		Title:    title,
		Message:  message,
		Duration: DefaultDuration(kind),
	})
}

// Success surfaces a success toast.
func (e *Emitter) Success(title, message string) {
	e.Emit(KindSuccess, title, message)
}

// Error surfaces an error toast.
func (e *Emitter) Error(title, message string) {
	e.Emit(KindError, title, message)
}

// Warning surfaces a warning toast.
func (e *Emitter) Warning(title, message string) {
	e.Emit(KindWarning, title, message)
}

// Info surfaces an informational toast.
func (e *Emitter) Info(title, message string) {
	e.Emit(KindInfo, title, message)
}
