package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics tracks toast lifecycle activity.
type NotificationMetrics struct {
	appended  *prometheus.CounterVec
	dismissed *prometheus.CounterVec
	active    prometheus.Gauge
}

// NewNotificationMetrics registers the notification metrics on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	appended := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_appended",
		Help: "Notifications appended, by kind.",
	}, []string{"kind"})
	dismissed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dismissed",
		Help: "Notifications removed, by cause (manual or expired).",
	}, []string{"cause"})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notifications_active",
		Help: "Notifications currently held by the hub.",
	})
	reg.MustRegister(appended, dismissed, active)
	return &NotificationMetrics{
		appended:  appended,
		dismissed: dismissed,
		active:    active,
	}
}

// IncAppended counts a new notification of the given kind.
func (m *NotificationMetrics) IncAppended(kind string) {
	if m == nil || m.appended == nil {
		return
	}
	m.appended.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDismissed counts a removal with the given cause.
func (m *NotificationMetrics) IncDismissed(cause string) {
	if m == nil || m.dismissed == nil {
		return
	}
	m.dismissed.WithLabelValues(normalizeLabel(cause)).Inc()
}

// SetActive records the current hub size.
func (m *NotificationMetrics) SetActive(n int) {
	if m == nil || m.active == nil {
		return
	}
	m.active.Set(float64(n))
}
