package notify

import (
	"sync"

	"github.com/phantomlabs/phantom-backend/pkg/metrics"
)

// Hub holds the authoritative list of active notifications and fans out a
// change signal to every registered listener after each mutation. It is the
// single owner of its state; consumers only ever see snapshots.
//
// Listeners are invoked outside the hub's lock, so a listener may call back
// into the hub (append, remove, snapshot) without deadlocking.
type Hub struct {
	mu        sync.Mutex
	active    []Notification
	listeners map[uint64]func()
	nextID    uint64
	metrics   *metrics.NotificationMetrics
}

// NewHub builds an empty hub. Metrics may be nil.
func NewHub(m *metrics.NotificationMetrics) *Hub {
	return &Hub{
		listeners: make(map[uint64]func()),
		metrics:   m,
	}
}

// Append inserts the notification at the end of the active list. A record
// whose id is already present is rejected and the existing record kept.
// Listeners are notified either way so consumers converge on the same list.
func (h *Hub) Append(n Notification) bool {
	h.mu.Lock()
	inserted := true
	for _, existing := range h.active {
		if existing.ID == n.ID {
			inserted = false
			break
		}
	}
	if inserted {
		h.active = append(h.active, n)
		h.metrics.IncAppended(string(n.Kind))
		h.metrics.SetActive(len(h.active))
	}
	listeners := h.copyListeners()
	h.mu.Unlock()

	h.notify(listeners)
	return inserted
}

// Remove deletes the notification with the given id if present. Listeners
// are always notified, even when nothing was removed.
func (h *Hub) Remove(id string) bool {
	h.mu.Lock()
	removed := false
	for i, n := range h.active {
		if n.ID == id {
			h.active = append(h.active[:i], h.active[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		h.metrics.SetActive(len(h.active))
	}
	listeners := h.copyListeners()
	h.mu.Unlock()

	h.notify(listeners)
	return removed
}

// Subscribe registers the listener and returns a capability that removes
// exactly this registration. Subscribing the same function twice creates two
// independent registrations. The returned func is idempotent.
func (h *Hub) Subscribe(listener func()) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = listener
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Snapshot returns a copy of the active list in insertion order. The caller
// owns the returned slice.
func (h *Hub) Snapshot() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Notification, len(h.active))
	copy(out, h.active)
	return out
}

// Len reports how many notifications are currently active.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.active)
}

func (h *Hub) copyListeners() []func() {
	out := make([]func(), 0, len(h.listeners))
	for _, l := range h.listeners {
		out = append(out, l)
	}
	return out
}

func (h *Hub) notify(listeners []func()) {
	for _, l := range listeners {
		l()
	}
}
