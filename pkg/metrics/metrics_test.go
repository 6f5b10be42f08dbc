package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMonitorMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMonitorMetrics(reg)
	metrics.ObservePoll("shopify", "kith.com", 250*time.Millisecond)
	metrics.IncPollError("shopify", "kith.com")
	metrics.IncEvent("shopify", "new_product")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "monitor_poll_errors", "store", "kith.com"); err != nil {
		t.Fatalf("fetch poll errors: %v", err)
	} else if got != 1 {
		t.Fatalf("expected errors=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "monitor_events", "type", "new_product"); err != nil {
		t.Fatalf("fetch events: %v", err)
	} else if got != 1 {
		t.Fatalf("expected events=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "monitor_poll_duration_seconds", "store", "kith.com"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNotificationMetricsNilSafe(t *testing.T) {
	var metrics *NotificationMetrics
	metrics.IncAppended("success")
	metrics.IncDismissed("manual")
	metrics.SetActive(3)

	empty := NewNotificationMetrics(nil)
	empty.IncAppended("error")
	empty.SetActive(1)
}

func TestNotificationMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewNotificationMetrics(reg)
	metrics.IncAppended("success")
	metrics.IncAppended("success")
	metrics.IncDismissed("expired")
	metrics.SetActive(2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "notifications_appended", "kind", "success"); err != nil {
		t.Fatalf("fetch appended: %v", err)
	} else if got != 2 {
		t.Fatalf("expected appended=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "notifications_dismissed", "cause", "expired"); err != nil {
		t.Fatalf("fetch dismissed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected dismissed=1, got %f", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
