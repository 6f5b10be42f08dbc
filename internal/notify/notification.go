package notify

import "time"

// Kind categorizes a notification and selects its default display duration.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// IsValid reports whether the kind is one of the known categories.
func (k Kind) IsValid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	}
	return false
}

const (
	durationSuccess = 4000 * time.Millisecond
	durationError   = 5000 * time.Millisecond
	durationWarning = 4000 * time.Millisecond
	durationInfo    = 4000 * time.Millisecond
)

// DefaultDuration returns the display duration for a kind.
func DefaultDuration(kind Kind) time.Duration {
	switch kind {
	case KindError:
		return durationError
	case KindWarning:
		return durationWarning
	case KindInfo:
		return durationInfo
	default:
		return durationSuccess
	}
}

// Notification is a single toast held by the hub until it expires or is
// dismissed. Fields are immutable after creation.
type Notification struct {
	ID       string
	Kind     Kind
	Title    string
	Message  string
	Duration time.Duration
}
