package monitors

import (
	"sync"
	"time"

	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// highPriorityProfit is the expected profit above which any event is
// treated as high priority regardless of the product's priority field.
var highPriorityProfit = decimal.NewFromInt(100)

// Event is a product detection from any monitor source.
type Event struct {
	Type       enums.MonitorEventType `json:"type"`
	Source     enums.MonitorSource    `json:"source"`
	Store      string                 `json:"store"`
	Product    LiveProduct            `json:"product"`
	Matched    *models.CuratedProduct `json:"matched,omitempty"`
	Confidence float64                `json:"confidence"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Priority reports the priority of the matched curated product, or low
// when the detection matched nothing.
func (e Event) Priority() enums.Priority {
	if e.Matched == nil {
		return enums.PriorityLow
	}
	return e.Matched.Priority
}

// HighPriority reports whether the event warrants immediate alerting.
func (e Event) HighPriority() bool {
	if e.Matched == nil {
		return false
	}
	if e.Matched.Priority == enums.PriorityHigh {
		return true
	}
	return e.Matched.ExpectedProfit().GreaterThan(highPriorityProfit)
}

// EventBuffer keeps the most recent monitor events in a bounded ring.
type EventBuffer struct {
	mu     sync.Mutex
	events []Event
	max    int
}

// NewEventBuffer builds a buffer holding up to max events.
func NewEventBuffer(max int) *EventBuffer {
	if max <= 0 {
		max = 1000
	}
	return &EventBuffer{max: max}
}

// Add appends an event, evicting the oldest when full.
func (b *EventBuffer) Add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
}

// Recent returns up to limit of the newest events, oldest first.
func (b *EventBuffer) Recent(limit int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || limit > len(b.events) {
		limit = len(b.events)
	}
	out := make([]Event, limit)
	copy(out, b.events[len(b.events)-limit:])
	return out
}

// HighPriority returns up to limit of the newest high priority events.
func (b *EventBuffer) HighPriority(limit int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	var matched []Event
	for _, event := range b.events {
		if event.HighPriority() {
			matched = append(matched, event)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

// Len reports how many events are currently buffered.
func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
