package monitors

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/phantomlabs/phantom-backend/pkg/config"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "monitors-test", Output: io.Discard})
}

func testMonitorConfig() config.MonitorConfig {
	return config.MonitorConfig{
		PollInterval:    time.Second,
		PageLimit:       250,
		MaxPages:        10,
		RequestTimeout:  5 * time.Second,
		EventBufferSize: 100,
		SeenProductTTL:  time.Hour,
	}
}

// catalogServer serves a swappable products.json payload. Pages past
// the first are always empty.
type catalogServer struct {
	mu       sync.Mutex
	products []map[string]any
	status   int
}

func (s *catalogServer) set(products ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
}

func (s *catalogServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.status != 0 {
			w.WriteHeader(s.status)
			return
		}
		products := s.products
		if r.URL.Query().Get("page") != "1" {
			products = nil
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"products": products})
	}
}

func shopifyPayload(id int64, title string, variants ...map[string]any) map[string]any {
	return map[string]any{
		"id":       id,
		"title":    title,
		"handle":   "test-handle",
		"variants": variants,
		"images":   []map[string]any{{"src": "https://cdn.example.com/shoe.jpg"}},
	}
}

func variantPayload(id int64, size, price string, available bool) map[string]any {
	return map[string]any{
		"id":        id,
		"option1":   size,
		"sku":       "SKU-1",
		"price":     price,
		"available": available,
	}
}

func newTestShopifyMonitor(t *testing.T, url string, targetSizes []string) *ShopifyMonitor {
	t.Helper()
	monitor, err := NewShopifyMonitor(ShopifyMonitorParams{
		Site:        ShopifySite{Name: "Test Store", URL: url, Delay: time.Millisecond},
		Config:      testMonitorConfig(),
		Logger:      testLogger(),
		TargetSizes: targetSizes,
	})
	require.NoError(t, err)
	return monitor
}

func TestShopifyDetectsNewProductOnce(t *testing.T) {
	catalog := &catalogServer{}
	catalog.set(shopifyPayload(100, "Jordan 4 Bred", variantPayload(1, "US 10", "215.00", true)))
	server := httptest.NewServer(catalog.handler())
	defer server.Close()

	monitor := newTestShopifyMonitor(t, server.URL, nil)

	detections, err := monitor.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, detections, 1)
	require.Equal(t, enums.MonitorEventNewProduct, detections[0].Type)
	require.Equal(t, "Jordan 4 Bred", detections[0].Product.Title)
	require.Equal(t, []string{"10"}, detections[0].Product.Sizes)
	require.True(t, detections[0].Product.Price.Equal(decimal.NewFromInt(215)))
	require.Equal(t, server.URL+"/products/test-handle", detections[0].Product.URL)

	detections, err = monitor.Check(context.Background())
	require.NoError(t, err)
	require.Empty(t, detections)

	stats := monitor.Stats()
	require.Equal(t, 2, stats.SuccessCount)
	require.Equal(t, 1, stats.ProductsFound)
	require.NotNil(t, stats.LastCheck)
}

func TestShopifyDetectsRestock(t *testing.T) {
	catalog := &catalogServer{}
	catalog.set(shopifyPayload(100, "Panda Dunk", variantPayload(1, "9", "110.00", true)))
	server := httptest.NewServer(catalog.handler())
	defer server.Close()

	monitor := newTestShopifyMonitor(t, server.URL, nil)
	_, err := monitor.Check(context.Background())
	require.NoError(t, err)

	catalog.set(shopifyPayload(100, "Panda Dunk",
		variantPayload(1, "9", "110.00", true),
		variantPayload(2, "10", "110.00", true),
	))

	detections, err := monitor.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, detections, 1)
	require.Equal(t, enums.MonitorEventRestock, detections[0].Type)
	require.ElementsMatch(t, []string{"9", "10"}, detections[0].Product.Sizes)
}

func TestShopifySoldOutThenBackReadsAsRestock(t *testing.T) {
	catalog := &catalogServer{}
	catalog.set(shopifyPayload(100, "Panda Dunk", variantPayload(1, "9", "110.00", true)))
	server := httptest.NewServer(catalog.handler())
	defer server.Close()

	monitor := newTestShopifyMonitor(t, server.URL, nil)
	_, err := monitor.Check(context.Background())
	require.NoError(t, err)

	catalog.set(shopifyPayload(100, "Panda Dunk", variantPayload(1, "9", "110.00", false)))
	detections, err := monitor.Check(context.Background())
	require.NoError(t, err)
	require.Empty(t, detections)

	catalog.set(shopifyPayload(100, "Panda Dunk", variantPayload(1, "9", "110.00", true)))
	detections, err = monitor.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, detections, 1)
	require.Equal(t, enums.MonitorEventRestock, detections[0].Type)
}

func TestShopifyDetectsPriceDrop(t *testing.T) {
	catalog := &catalogServer{}
	catalog.set(shopifyPayload(100, "Yeezy Onyx", variantPayload(1, "11", "230.00", true)))
	server := httptest.NewServer(catalog.handler())
	defer server.Close()

	monitor := newTestShopifyMonitor(t, server.URL, nil)
	_, err := monitor.Check(context.Background())
	require.NoError(t, err)

	catalog.set(shopifyPayload(100, "Yeezy Onyx", variantPayload(1, "11", "180.00", true)))
	detections, err := monitor.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, detections, 1)
	require.Equal(t, enums.MonitorEventPriceDrop, detections[0].Type)
	require.True(t, detections[0].Product.Price.Equal(decimal.NewFromInt(180)))
}

func TestShopifyFiltersTargetSizes(t *testing.T) {
	catalog := &catalogServer{}
	catalog.set(shopifyPayload(100, "Jordan 1 Mocha", variantPayload(1, "9", "180.00", true)))
	server := httptest.NewServer(catalog.handler())
	defer server.Close()

	monitor := newTestShopifyMonitor(t, server.URL, []string{"13"})

	detections, err := monitor.Check(context.Background())
	require.NoError(t, err)
	require.Empty(t, detections)
}

func TestShopifyBacksOffOnRateLimit(t *testing.T) {
	catalog := &catalogServer{status: http.StatusTooManyRequests}
	server := httptest.NewServer(catalog.handler())
	defer server.Close()

	monitor := newTestShopifyMonitor(t, server.URL, nil)

	_, err := monitor.Check(context.Background())
	require.ErrorIs(t, err, ErrBackingOff)

	// Still inside the backoff window; no request is made.
	_, err = monitor.Check(context.Background())
	require.ErrorIs(t, err, ErrBackingOff)
	require.Equal(t, 1, monitor.Stats().ErrorCount)
}

type fakeSeenStore struct {
	mu    sync.Mutex
	first map[string]bool
	calls []string
}

func (f *fakeSeenStore) MarkSeen(ctx context.Context, source, store, productID string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := source + ":" + store + ":" + productID
	f.calls = append(f.calls, key)
	return f.first[key], nil
}

func TestShopifySeenStoreSuppressesReplays(t *testing.T) {
	catalog := &catalogServer{}
	catalog.set(shopifyPayload(100, "Jordan 4 Bred", variantPayload(1, "10", "215.00", true)))
	server := httptest.NewServer(catalog.handler())
	defer server.Close()

	seen := &fakeSeenStore{first: map[string]bool{}}
	monitor, err := NewShopifyMonitor(ShopifyMonitorParams{
		Site:   ShopifySite{Name: "Test Store", URL: server.URL, Delay: time.Millisecond},
		Config: testMonitorConfig(),
		Logger: testLogger(),
		Seen:   seen,
	})
	require.NoError(t, err)

	detections, err := monitor.Check(context.Background())
	require.NoError(t, err)
	require.Empty(t, detections)
	require.Len(t, seen.calls, 1)
}
