package monitors

import (
	"fmt"
	"testing"

	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func matchedEvent(priority enums.Priority, retail, resale int64) Event {
	return Event{
		Type:   enums.MonitorEventNewProduct,
		Source: enums.MonitorSourceShopify,
		Matched: &models.CuratedProduct{
			Name:        "Jordan 4 Bred",
			Priority:    priority,
			RetailPrice: decimal.NewFromInt(retail),
			ResalePrice: decimal.NewFromInt(resale),
		},
		Confidence: 0.9,
	}
}

func TestEventHighPriority(t *testing.T) {
	require.False(t, Event{}.HighPriority())
	require.True(t, matchedEvent(enums.PriorityHigh, 200, 210).HighPriority())
	require.True(t, matchedEvent(enums.PriorityLow, 200, 350).HighPriority())
	require.False(t, matchedEvent(enums.PriorityMedium, 200, 250).HighPriority())
}

func TestEventPriorityDefaultsLow(t *testing.T) {
	require.Equal(t, enums.PriorityLow, Event{}.Priority())
	require.Equal(t, enums.PriorityHigh, matchedEvent(enums.PriorityHigh, 200, 210).Priority())
}

func TestEventBufferEvictsOldest(t *testing.T) {
	buffer := NewEventBuffer(3)
	for i := 0; i < 5; i++ {
		buffer.Add(Event{Store: fmt.Sprintf("store-%d", i)})
	}

	require.Equal(t, 3, buffer.Len())
	recent := buffer.Recent(0)
	require.Len(t, recent, 3)
	require.Equal(t, "store-2", recent[0].Store)
	require.Equal(t, "store-4", recent[2].Store)
}

func TestEventBufferRecentLimit(t *testing.T) {
	buffer := NewEventBuffer(10)
	for i := 0; i < 4; i++ {
		buffer.Add(Event{Store: fmt.Sprintf("store-%d", i)})
	}

	recent := buffer.Recent(2)
	require.Len(t, recent, 2)
	require.Equal(t, "store-2", recent[0].Store)
	require.Equal(t, "store-3", recent[1].Store)
}

func TestEventBufferHighPriority(t *testing.T) {
	buffer := NewEventBuffer(10)
	buffer.Add(Event{Store: "plain"})
	buffer.Add(matchedEvent(enums.PriorityHigh, 200, 210))
	buffer.Add(Event{Store: "plain-2"})

	high := buffer.HighPriority(5)
	require.Len(t, high, 1)
	require.Equal(t, "Jordan 4 Bred", high[0].Matched.Name)
}
