package monitors

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phantomlabs/phantom-backend/internal/notify"
	"github.com/phantomlabs/phantom-backend/internal/products"
	"github.com/phantomlabs/phantom-backend/internal/proxies"
	"github.com/phantomlabs/phantom-backend/internal/settings"
	"github.com/phantomlabs/phantom-backend/internal/webhooks"
	"github.com/phantomlabs/phantom-backend/pkg/config"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
	"github.com/phantomlabs/phantom-backend/pkg/metrics"
	redisx "github.com/phantomlabs/phantom-backend/pkg/redis"
)

const (
	maxFootsiteKeywords  = 20
	keywordsPerProduct   = 3
	monitorErrorCooldown = 5 * time.Second
	defaultMinConfidence = 0.7
)

// AutoTaskConfig gates automatic checkout task creation.
type AutoTaskConfig struct {
	Enabled       bool           `json:"enabled"`
	MinConfidence float64        `json:"min_confidence"`
	MinPriority   enums.Priority `json:"min_priority"`
}

// ManagerStats summarizes the manager's activity.
type ManagerStats struct {
	Running           bool            `json:"running"`
	TotalFound        int             `json:"total_products_found"`
	HighPriorityFound int             `json:"high_priority_found"`
	TasksCreated      int             `json:"tasks_created"`
	EventsStored      int             `json:"events_stored"`
	AutoTasks         AutoTaskConfig  `json:"auto_tasks"`
	Shopify           []ShopifyStats  `json:"shopify,omitempty"`
	Footsites         []FootsiteStats `json:"footsites,omitempty"`
}

// StoreConfig describes one Shopify storefront added at setup time.
type StoreConfig struct {
	Name  string `json:"name" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
	Delay int    `json:"delay_ms"`
}

// Manager coordinates all store monitors and fans detections out to
// notifications, webhooks, and the event buffer.
type Manager struct {
	cfg      config.MonitorConfig
	logg     *logger.Logger
	metrics  *metrics.MonitorMetrics
	products products.Service
	settings settings.Service
	emitter  *notify.Emitter
	webhook  webhooks.Sender
	seen     redisx.SeenStore

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	shopify   []*ShopifyMonitor
	footsites []*FootsiteMonitor
	pool      *proxies.Pool
	buffer    *EventBuffer
	autoTasks AutoTaskConfig
	stats     struct {
		totalFound        int
		highPriorityFound int
		tasksCreated      int
	}
}

// ManagerParams carries the manager's dependencies. Webhook and Seen
// are optional.
type ManagerParams struct {
	Config   config.MonitorConfig
	Logger   *logger.Logger
	Metrics  *metrics.MonitorMetrics
	Products products.Service
	Settings settings.Service
	Emitter  *notify.Emitter
	Webhook  webhooks.Sender
	Seen     redisx.SeenStore
}

// NewManager builds the monitor orchestrator.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products service required")
	}
	if params.Settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settings service required")
	}
	if params.Emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification emitter required")
	}

	return &Manager{
		cfg:      params.Config,
		logg:     params.Logger,
		metrics:  params.Metrics,
		products: params.Products,
		settings: params.Settings,
		emitter:  params.Emitter,
		webhook:  params.Webhook,
		seen:     params.Seen,
		buffer:   NewEventBuffer(params.Config.EventBufferSize),
		autoTasks: AutoTaskConfig{
			MinConfidence: defaultMinConfidence,
			MinPriority:   enums.PriorityMedium,
		},
	}, nil
}

// SetProxyPool assigns the pool used for subsequently added monitors.
func (m *Manager) SetProxyPool(pool *proxies.Pool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool = pool
}

// SetupShopify configures Shopify monitoring. With useDefaults and no
// explicit stores the built-in storefront list is used.
func (m *Manager) SetupShopify(stores []StoreConfig, targetSizes []string, useDefaults bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "stop monitors before reconfiguring")
	}

	var sites []ShopifySite
	if len(stores) == 0 && useDefaults {
		sites = DefaultShopifySites()
	}
	for _, store := range stores {
		delay := time.Duration(store.Delay) * time.Millisecond
		if delay <= 0 {
			delay = 3 * time.Second
		}
		sites = append(sites, ShopifySite{Name: store.Name, URL: store.URL, Delay: delay})
	}
	if len(sites) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no stores to monitor")
	}

	monitors := make([]*ShopifyMonitor, 0, len(sites))
	for _, site := range sites {
		monitor, err := NewShopifyMonitor(ShopifyMonitorParams{
			Site:        site,
			Config:      m.cfg,
			Logger:      m.logg,
			Metrics:     m.metrics,
			Seen:        m.seen,
			Proxy:       m.nextProxyLocked(),
			TargetSizes: targetSizes,
		})
		if err != nil {
			return err
		}
		monitors = append(monitors, monitor)
	}
	m.shopify = monitors
	return nil
}

// AddShopifyStore appends one storefront without replacing the rest.
func (m *Manager) AddShopifyStore(store StoreConfig, targetSizes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "stop monitors before reconfiguring")
	}

	delay := time.Duration(store.Delay) * time.Millisecond
	if delay <= 0 {
		delay = 3 * time.Second
	}
	monitor, err := NewShopifyMonitor(ShopifyMonitorParams{
		Site:        ShopifySite{Name: store.Name, URL: store.URL, Delay: delay},
		Config:      m.cfg,
		Logger:      m.logg,
		Metrics:     m.metrics,
		Seen:        m.seen,
		Proxy:       m.nextProxyLocked(),
		TargetSizes: targetSizes,
	})
	if err != nil {
		return err
	}
	m.shopify = append(m.shopify, monitor)
	return nil
}

// SetupFootsites configures Footsite monitoring. Keywords default to
// the enabled curated catalog when empty.
func (m *Manager) SetupFootsites(ctx context.Context, siteIDs, keywords, targetSizes []string) error {
	if len(keywords) == 0 {
		derived, err := m.keywordsFromCatalog(ctx)
		if err != nil {
			return err
		}
		keywords = derived
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "stop monitors before reconfiguring")
	}

	if len(siteIDs) == 0 {
		siteIDs = DefaultFootsiteIDs()
	}

	monitors := make([]*FootsiteMonitor, 0, len(siteIDs))
	for _, id := range siteIDs {
		site, ok := LookupFootsite(id)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown footsite %q", id))
		}
		monitor, err := NewFootsiteMonitor(FootsiteMonitorParams{
			Site:        site,
			Config:      m.cfg,
			Logger:      m.logg,
			Metrics:     m.metrics,
			Proxy:       m.nextProxyLocked(),
			Keywords:    keywords,
			TargetSizes: targetSizes,
		})
		if err != nil {
			return err
		}
		monitors = append(monitors, monitor)
	}
	m.footsites = monitors
	return nil
}

// SetFootsiteKeywords replaces the search keywords on every Footsite
// monitor.
func (m *Manager) SetFootsiteKeywords(keywords []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, monitor := range m.footsites {
		monitor.SetKeywords(keywords)
	}
}

// EnableAutoTasks configures automatic task creation thresholds.
func (m *Manager) EnableAutoTasks(enabled bool, minConfidence float64, minPriority enums.Priority) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoTasks = AutoTaskConfig{
		Enabled:       enabled,
		MinConfidence: minConfidence,
		MinPriority:   minPriority,
	}
}

// AutoTasks returns the current auto-task thresholds.
func (m *Manager) AutoTasks() AutoTaskConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autoTasks
}

// Start launches one polling goroutine per configured monitor.
func (m *Manager) Start(ctx context.Context) error {
	m.applySettings(ctx)

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "monitors already running")
	}
	if len(m.shopify) == 0 && len(m.footsites) == 0 {
		m.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no monitors configured")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.running = true

	for _, monitor := range m.shopify {
		m.wg.Add(1)
		go m.runShopify(runCtx, monitor)
	}
	for _, monitor := range m.footsites {
		m.wg.Add(1)
		go m.runFootsite(runCtx, monitor)
	}
	shopifyCount := len(m.shopify)
	footsiteCount := len(m.footsites)
	m.mu.Unlock()

	m.logg.Info(m.logg.WithFields(ctx, map[string]any{
		"shopify":   shopifyCount,
		"footsites": footsiteCount,
	}), "monitors started")
	return nil
}

// Stop halts all polling goroutines and waits for them to exit.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "monitors not running")
	}
	m.running = false
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logg.Info(ctx, "monitors stopped")
	return nil
}

// Running reports whether the polling goroutines are live.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// RecentEvents returns the newest buffered events.
func (m *Manager) RecentEvents(limit int) []Event {
	return m.buffer.Recent(limit)
}

// HighPriorityEvents returns the newest high priority events.
func (m *Manager) HighPriorityEvents(limit int) []Event {
	return m.buffer.HighPriority(limit)
}

// Stats returns a snapshot across all monitors.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := ManagerStats{
		Running:           m.running,
		TotalFound:        m.stats.totalFound,
		HighPriorityFound: m.stats.highPriorityFound,
		TasksCreated:      m.stats.tasksCreated,
		EventsStored:      m.buffer.Len(),
		AutoTasks:         m.autoTasks,
	}
	for _, monitor := range m.shopify {
		stats.Shopify = append(stats.Shopify, monitor.Stats())
	}
	for _, monitor := range m.footsites {
		stats.Footsites = append(stats.Footsites, monitor.Stats())
	}
	return stats
}

// applySettings pulls operator-tunable thresholds from the settings row.
func (m *Manager) applySettings(ctx context.Context) {
	setting, err := m.settings.Get(ctx)
	if err != nil {
		m.logg.Warn(ctx, "monitor settings unavailable, keeping current thresholds")
		return
	}
	minPriority, err := enums.ParsePriority(setting.MinPriority)
	if err != nil {
		minPriority = enums.PriorityMedium
	}
	m.EnableAutoTasks(setting.AutoTasksEnabled, setting.MinConfidence, minPriority)
}

func (m *Manager) keywordsFromCatalog(ctx context.Context) ([]string, error) {
	catalog, err := m.products.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var keywords []string
	for _, product := range catalog {
		if !product.Enabled {
			continue
		}
		count := 0
		for _, keyword := range product.Keywords {
			if count >= keywordsPerProduct {
				break
			}
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" || strings.HasPrefix(keyword, "-") {
				continue
			}
			if _, ok := seen[keyword]; ok {
				continue
			}
			seen[keyword] = struct{}{}
			keywords = append(keywords, keyword)
			count++
			if len(keywords) >= maxFootsiteKeywords {
				return keywords, nil
			}
		}
	}
	return keywords, nil
}

func (m *Manager) nextProxyLocked() *proxies.Proxy {
	if m.pool == nil {
		return nil
	}
	proxy, ok := m.pool.Next()
	if !ok {
		return nil
	}
	return &proxy
}

func (m *Manager) runShopify(ctx context.Context, monitor *ShopifyMonitor) {
	defer m.wg.Done()
	m.runLoop(ctx, monitor.Delay(), monitor.site.Name, func() ([]Detection, error) {
		return monitor.Check(ctx)
	}, enums.MonitorSourceShopify, monitor.site.Name)
}

func (m *Manager) runFootsite(ctx context.Context, monitor *FootsiteMonitor) {
	defer m.wg.Done()
	m.runLoop(ctx, monitor.Delay(), monitor.site.Name, func() ([]Detection, error) {
		return monitor.Check(ctx)
	}, enums.MonitorSourceFootsite, monitor.site.Name)
}

func (m *Manager) runLoop(ctx context.Context, delay time.Duration, store string, check func() ([]Detection, error), source enums.MonitorSource, storeName string) {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		detections, err := check()
		switch {
		case err == ErrBackingOff:
			// Waiting out a rate limit window.
		case err != nil:
			m.logg.Error(m.logg.WithStore(ctx, store), "monitor check failed", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(monitorErrorCooldown):
			}
		default:
			for _, detection := range detections {
				m.handleDetection(ctx, source, storeName, detection)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// handleDetection matches the product against the curated catalog and
// fans the event out.
func (m *Manager) handleDetection(ctx context.Context, source enums.MonitorSource, store string, detection Detection) {
	event := Event{
		Type:      detection.Type,
		Source:    source,
		Store:     store,
		Product:   detection.Product,
		Timestamp: time.Now().UTC(),
	}

	matches, err := m.products.Match(ctx, detection.Product.Title)
	if err == nil && len(matches) > 0 {
		matched := matches[0].Product
		event.Matched = &matched
		event.Confidence = matches[0].Confidence
	}

	m.buffer.Add(event)
	m.metrics.IncEvent(string(source), string(event.Type))

	m.mu.Lock()
	m.stats.totalFound++
	highPriority := event.HighPriority()
	if highPriority {
		m.stats.highPriorityFound++
	}
	autoTasks := m.autoTasks
	m.mu.Unlock()

	logCtx := m.logg.WithFields(ctx, map[string]any{
		"type":       string(event.Type),
		"source":     string(source),
		"store":      store,
		"title":      detection.Product.Title,
		"confidence": event.Confidence,
	})
	m.logg.Info(logCtx, "monitor event")

	if highPriority {
		m.emitter.Warning(
			fmt.Sprintf("High priority: %s", event.Matched.Name),
			fmt.Sprintf("%s at %s", eventLabel(event.Type), store),
		)
	}

	m.dispatchWebhook(ctx, event)

	if autoTasks.Enabled && shouldCreateTask(event, autoTasks) {
		m.mu.Lock()
		m.stats.tasksCreated++
		m.mu.Unlock()
		m.emitter.Info(
			"Auto task queued",
			fmt.Sprintf("%s on %s", detection.Product.Title, store),
		)
		m.logg.Info(logCtx, "auto task created")
	}
}

func (m *Manager) dispatchWebhook(ctx context.Context, event Event) {
	if m.webhook == nil {
		return
	}
	setting, err := m.settings.Get(ctx)
	if err != nil {
		return
	}
	if setting.WebhookURL == nil || strings.TrimSpace(*setting.WebhookURL) == "" {
		return
	}
	switch event.Type {
	case enums.MonitorEventNewProduct:
		if !setting.WebhookOnNewProduct {
			return
		}
	case enums.MonitorEventRestock:
		if !setting.WebhookOnRestock {
			return
		}
	default:
		return
	}

	if err := m.webhook.Send(ctx, *setting.WebhookURL, eventMessage(event)); err != nil {
		m.logg.Warn(m.logg.WithStore(ctx, event.Store), "webhook delivery failed")
	}
}

func eventMessage(event Event) webhooks.Message {
	color := webhooks.ColorNewProduct
	if event.Type == enums.MonitorEventRestock {
		color = webhooks.ColorRestock
	}

	fields := []webhooks.EmbedField{
		{Name: "Store", Value: event.Store, Inline: true},
		{Name: "Price", Value: "$" + event.Product.Price.StringFixed(2), Inline: true},
	}
	if len(event.Product.Sizes) > 0 {
		sizes := event.Product.Sizes
		if len(sizes) > 8 {
			sizes = sizes[:8]
		}
		fields = append(fields, webhooks.EmbedField{Name: "Sizes", Value: strings.Join(sizes, ", ")})
	}
	if event.Matched != nil {
		fields = append(fields, webhooks.EmbedField{
			Name:   "Matched",
			Value:  fmt.Sprintf("%s (%.0f%%)", event.Matched.Name, event.Confidence*100),
			Inline: true,
		})
	}

	return webhooks.Message{
		Embeds: []webhooks.Embed{{
			Title:     fmt.Sprintf("%s: %s", eventLabel(event.Type), event.Product.Title),
			URL:       event.Product.URL,
			Color:     color,
			Fields:    fields,
			Timestamp: event.Timestamp.Format(time.RFC3339),
			Footer:    &webhooks.EmbedFooter{Text: "phantom monitor"},
		}},
	}
}

func eventLabel(eventType enums.MonitorEventType) string {
	switch eventType {
	case enums.MonitorEventNewProduct:
		return "New product"
	case enums.MonitorEventRestock:
		return "Restock"
	case enums.MonitorEventPriceDrop:
		return "Price drop"
	default:
		return "Event"
	}
}

func shouldCreateTask(event Event, cfg AutoTaskConfig) bool {
	if event.Matched == nil {
		return false
	}
	if event.Confidence < cfg.MinConfidence {
		return false
	}
	return event.Priority().AtLeast(cfg.MinPriority)
}
