package enums

import "fmt"

// MonitorEventType classifies what a monitor detected.
type MonitorEventType string

const (
	MonitorEventNewProduct MonitorEventType = "new_product"
	MonitorEventRestock    MonitorEventType = "restock"
	MonitorEventPriceDrop  MonitorEventType = "price_drop"
)

var validMonitorEventTypes = []MonitorEventType{
	MonitorEventNewProduct,
	MonitorEventRestock,
	MonitorEventPriceDrop,
}

// IsValid checks whether the given type matches the canonical enum.
func (m MonitorEventType) IsValid() bool {
	for _, candidate := range validMonitorEventTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// MonitorSource identifies which monitor family produced an event.
type MonitorSource string

const (
	MonitorSourceShopify  MonitorSource = "shopify"
	MonitorSourceFootsite MonitorSource = "footsite"
)

var validMonitorSources = []MonitorSource{
	MonitorSourceShopify,
	MonitorSourceFootsite,
}

// IsValid checks whether the given source matches the canonical enum.
func (m MonitorSource) IsValid() bool {
	for _, candidate := range validMonitorSources {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMonitorSource converts raw strings into MonitorSource.
func ParseMonitorSource(value string) (MonitorSource, error) {
	for _, candidate := range validMonitorSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid monitor source %q", value)
}
