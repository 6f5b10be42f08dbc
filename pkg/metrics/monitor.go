package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MonitorMetrics records poll outcomes per monitored store.
type MonitorMetrics struct {
	pollDuration *prometheus.HistogramVec
	pollErrors   *prometheus.CounterVec
	events       *prometheus.CounterVec
}

// NewMonitorMetrics registers the monitor metrics on the provided registerer.
func NewMonitorMetrics(reg prometheus.Registerer) *MonitorMetrics {
	if reg == nil {
		return &MonitorMetrics{}
	}
	pollDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "monitor_poll_duration_seconds",
		Help:    "Duration of monitor poll cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source", "store"})
	pollErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_poll_errors",
		Help: "Failed monitor poll cycles.",
	}, []string{"source", "store"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_events",
		Help: "Monitor events emitted, by type.",
	}, []string{"source", "type"})
	reg.MustRegister(pollDuration, pollErrors, events)
	return &MonitorMetrics{
		pollDuration: pollDuration,
		pollErrors:   pollErrors,
		events:       events,
	}
}

// ObservePoll records the duration for one poll cycle.
func (m *MonitorMetrics) ObservePoll(source, store string, duration time.Duration) {
	if m == nil || m.pollDuration == nil {
		return
	}
	m.pollDuration.WithLabelValues(normalizeLabel(source), normalizeLabel(store)).Observe(duration.Seconds())
}

// IncPollError increments the error counter for the store.
func (m *MonitorMetrics) IncPollError(source, store string) {
	if m == nil || m.pollErrors == nil {
		return
	}
	m.pollErrors.WithLabelValues(normalizeLabel(source), normalizeLabel(store)).Inc()
}

// IncEvent counts an emitted monitor event.
func (m *MonitorMetrics) IncEvent(source, eventType string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(source), normalizeLabel(eventType)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
