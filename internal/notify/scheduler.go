package notify

import (
	"sync"
	"time"

	"github.com/phantomlabs/phantom-backend/pkg/metrics"
)

type timerHandle interface {
	Stop() bool
}

type timerFunc func(d time.Duration, fn func()) timerHandle

func realAfter(d time.Duration, fn func()) timerHandle {
	return time.AfterFunc(d, fn)
}

// Scheduler drives the timed lifecycle of every notification in the hub.
// Each notification gets exactly one single-shot timer for its duration;
// when the timer fires the notification is removed. Manual dismissal stops
// the timer first, so a cancelled timer can never fire a stale removal.
type Scheduler struct {
	hub     *Hub
	after   timerFunc
	metrics *metrics.NotificationMetrics

	mu     sync.Mutex
	timers map[string]timerHandle

	unsubscribe func()
}

// NewScheduler subscribes to the hub and starts tracking timers for any
// notifications already present. Metrics may be nil.
func NewScheduler(hub *Hub, m *metrics.NotificationMetrics) *Scheduler {
	return newScheduler(hub, m, realAfter)
}

func newScheduler(hub *Hub, m *metrics.NotificationMetrics, after timerFunc) *Scheduler {
	s := &Scheduler{
		hub:     hub,
		after:   after,
		metrics: m,
		timers:  make(map[string]timerHandle),
	}
	s.unsubscribe = hub.Subscribe(s.sync)
	s.sync()
	return s
}

// Dismiss removes the notification immediately, cancelling its pending
// expiry timer unconditionally. Dismissing an unknown id still triggers a
// hub fan-out so consumers re-read the list.
func (s *Scheduler) Dismiss(id string) {
	s.mu.Lock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if s.hub.Remove(id) {
		s.metrics.IncDismissed("manual")
	}
}

// Close stops tracking hub changes and cancels every pending timer.
func (s *Scheduler) Close() {
	s.unsubscribe()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// sync reconciles tracked timers against the hub's current list. It runs on
// every hub fan-out: new notifications get a timer, notifications removed by
// someone else get their timer cancelled.
func (s *Scheduler) sync() {
	current := s.hub.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	alive := make(map[string]struct{}, len(current))
	for _, n := range current {
		alive[n.ID] = struct{}{}
		if _, tracked := s.timers[n.ID]; tracked {
			continue
		}
		id := n.ID
		s.timers[id] = s.after(n.Duration, func() { s.expire(id) })
	}

	for id, t := range s.timers {
		if _, ok := alive[id]; !ok {
			t.Stop()
			delete(s.timers, id)
		}
	}
}

// expire is the timer callback. It re-checks the tracked set so a timer
// raced by Dismiss or Close never removes anything.
func (s *Scheduler) expire(id string) {
	s.mu.Lock()
	if _, ok := s.timers[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	s.mu.Unlock()

	if s.hub.Remove(id) {
		s.metrics.IncDismissed("expired")
	}
}
