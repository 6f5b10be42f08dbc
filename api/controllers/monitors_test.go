package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phantomlabs/phantom-backend/internal/monitors"
	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
)

type fakeMonitorService struct {
	running     bool
	startErr    error
	stats       monitors.ManagerStats
	shopify     []monitors.StoreConfig
	useDefaults bool
	added       *monitors.StoreConfig
	footsites   []string
	autoTasks   monitors.AutoTaskConfig
	events      []monitors.Event
	eventLimit  int
}

func (f *fakeMonitorService) Running() bool { return f.running }

func (f *fakeMonitorService) Start(ctx context.Context) error { return f.startErr }

func (f *fakeMonitorService) Stop(ctx context.Context) error { return nil }

func (f *fakeMonitorService) Stats() monitors.ManagerStats { return f.stats }

func (f *fakeMonitorService) SetupShopify(stores []monitors.StoreConfig, targetSizes []string, useDefaults bool) error {
	f.shopify = stores
	f.useDefaults = useDefaults
	return nil
}

func (f *fakeMonitorService) AddShopifyStore(store monitors.StoreConfig, targetSizes []string) error {
	f.added = &store
	return nil
}

func (f *fakeMonitorService) SetupFootsites(ctx context.Context, siteIDs, keywords, targetSizes []string) error {
	f.footsites = siteIDs
	return nil
}

func (f *fakeMonitorService) EnableAutoTasks(enabled bool, minConfidence float64, minPriority enums.Priority) {
	f.autoTasks = monitors.AutoTaskConfig{Enabled: enabled, MinConfidence: minConfidence, MinPriority: minPriority}
}

func (f *fakeMonitorService) AutoTasks() monitors.AutoTaskConfig { return f.autoTasks }

func (f *fakeMonitorService) RecentEvents(limit int) []monitors.Event {
	f.eventLimit = limit
	return f.events
}

func (f *fakeMonitorService) HighPriorityEvents(limit int) []monitors.Event {
	f.eventLimit = limit
	return f.events
}

func TestMonitorsShopifySetupDecodesStores(t *testing.T) {
	mgr := &fakeMonitorService{}
	body := `{
		"stores": [{"name": "Kith", "url": "https://kith.com", "delay_ms": 2000}],
		"use_defaults": true
	}`
	rec := httptest.NewRecorder()

	MonitorsShopifySetup(mgr, nil)(rec, httptest.NewRequest(http.MethodPost, "/monitors/shopify/setup", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, mgr.useDefaults)
	require.Len(t, mgr.shopify, 1)
	require.Equal(t, "Kith", mgr.shopify[0].Name)
	require.Equal(t, 2000, mgr.shopify[0].Delay)
}

func TestMonitorsShopifySetupRejectsBadStore(t *testing.T) {
	body := `{"stores": [{"name": "Kith", "url": "not-a-url"}]}`
	rec := httptest.NewRecorder()

	MonitorsShopifySetup(&fakeMonitorService{}, nil)(rec, httptest.NewRequest(http.MethodPost, "/monitors/shopify/setup", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonitorsShopifyAddStoreReturns201(t *testing.T) {
	mgr := &fakeMonitorService{}
	body := `{"name": "Undefeated", "url": "https://undefeated.com", "delay_ms": 1500}`
	rec := httptest.NewRecorder()

	MonitorsShopifyAddStore(mgr, nil)(rec, httptest.NewRequest(http.MethodPost, "/monitors/shopify/stores", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, mgr.added)
	require.Equal(t, "Undefeated", mgr.added.Name)
	require.Equal(t, 1500, mgr.added.Delay)
}

func TestMonitorsFootsitesSetupPassesSites(t *testing.T) {
	mgr := &fakeMonitorService{}
	body := `{"sites": ["footlocker", "champs"], "keywords": ["jordan"]}`
	rec := httptest.NewRecorder()

	MonitorsFootsitesSetup(mgr, nil)(rec, httptest.NewRequest(http.MethodPost, "/monitors/footsites/setup", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"footlocker", "champs"}, mgr.footsites)
}

func TestMonitorsAutoTasksParsesPriority(t *testing.T) {
	mgr := &fakeMonitorService{}
	body := `{"enabled": true, "min_confidence": 0.8, "min_priority": "high"}`
	rec := httptest.NewRecorder()

	MonitorsAutoTasks(mgr, nil)(rec, httptest.NewRequest(http.MethodPost, "/monitors/auto-tasks", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, mgr.autoTasks.Enabled)
	require.Equal(t, enums.PriorityHigh, mgr.autoTasks.MinPriority)
}

func TestMonitorsAutoTasksRejectsUnknownPriority(t *testing.T) {
	body := `{"enabled": true, "min_confidence": 0.8, "min_priority": "urgent"}`
	rec := httptest.NewRecorder()

	MonitorsAutoTasks(&fakeMonitorService{}, nil)(rec, httptest.NewRequest(http.MethodPost, "/monitors/auto-tasks", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonitorEventsUsesLimitAndMapsMatched(t *testing.T) {
	matched := &models.CuratedProduct{Name: "Jordan 4", Brand: "Jordan", Keywords: []string{"jordan"}}
	mgr := &fakeMonitorService{
		events: []monitors.Event{{
			Type:       enums.MonitorEventNewProduct,
			Source:     enums.MonitorSourceShopify,
			Store:      "Kith",
			Product:    monitors.LiveProduct{Title: "Jordan 4 Retro", DetectedAt: time.Now()},
			Matched:    matched,
			Confidence: 0.92,
			Timestamp:  time.Now(),
		}},
	}
	rec := httptest.NewRecorder()

	MonitorEvents(mgr, nil)(rec, httptest.NewRequest(http.MethodGet, "/monitors/events?limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 10, mgr.eventLimit)

	var resp struct {
		Data []eventDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Data[0].Matched)
	require.Equal(t, "Jordan 4", resp.Data[0].Matched.Name)
}

func TestMonitorEventsRejectsZeroLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	MonitorEvents(&fakeMonitorService{}, nil)(rec, httptest.NewRequest(http.MethodGet, "/monitors/events?limit=0", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
