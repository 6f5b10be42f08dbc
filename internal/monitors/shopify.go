package monitors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/phantomlabs/phantom-backend/internal/proxies"
	"github.com/phantomlabs/phantom-backend/pkg/config"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
	"github.com/phantomlabs/phantom-backend/pkg/metrics"
	redisx "github.com/phantomlabs/phantom-backend/pkg/redis"
	"github.com/shopspring/decimal"
)

// ErrBackingOff is returned while a monitor waits out a rate limit.
var ErrBackingOff = pkgerrors.New(pkgerrors.CodeRateLimit, "monitor backing off")

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
}

// Detection is one new-product, restock, or price-drop observation.
type Detection struct {
	Type    enums.MonitorEventType
	Product LiveProduct
}

const (
	maxBackoff  = 5 * time.Minute
	baseBackoff = 10 * time.Second
)

// ShopifyStats is a point-in-time snapshot of one store monitor.
type ShopifyStats struct {
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	SuccessCount  int        `json:"success_count"`
	ErrorCount    int        `json:"error_count"`
	ProductsFound int        `json:"products_found"`
	LastCheck     *time.Time `json:"last_check,omitempty"`
}

// ShopifyMonitor polls one storefront's products.json for changes.
type ShopifyMonitor struct {
	site        ShopifySite
	cfg         config.MonitorConfig
	logg        *logger.Logger
	metrics     *metrics.MonitorMetrics
	httpClient  *http.Client
	seen        redisx.SeenStore
	targetSizes []string

	mu                sync.Mutex
	seenVariants      map[string]map[string]struct{}
	lastPrice         map[string]decimal.Decimal
	consecutiveErrors int
	backoffUntil      time.Time
	stats             ShopifyStats
}

// ShopifyMonitorParams carries the monitor's dependencies. Seen and
// Proxy are optional.
type ShopifyMonitorParams struct {
	Site        ShopifySite
	Config      config.MonitorConfig
	Logger      *logger.Logger
	Metrics     *metrics.MonitorMetrics
	Seen        redisx.SeenStore
	Proxy       *proxies.Proxy
	TargetSizes []string
}

// NewShopifyMonitor builds a poller for one storefront.
func NewShopifyMonitor(params ShopifyMonitorParams) (*ShopifyMonitor, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if strings.TrimSpace(params.Site.URL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store url required")
	}

	client := &http.Client{Timeout: params.Config.RequestTimeout}
	if client.Timeout <= 0 {
		client.Timeout = 15 * time.Second
	}
	if params.Proxy != nil {
		client.Transport = &http.Transport{Proxy: http.ProxyURL(params.Proxy.URL())}
	}

	return &ShopifyMonitor{
		site:         params.Site,
		cfg:          params.Config,
		logg:         params.Logger,
		metrics:      params.Metrics,
		httpClient:   client,
		seen:         params.Seen,
		targetSizes:  NormalizeSizes(params.TargetSizes),
		seenVariants: make(map[string]map[string]struct{}),
		lastPrice:    make(map[string]decimal.Decimal),
		stats:        ShopifyStats{Name: params.Site.Name, URL: params.Site.URL},
	}, nil
}

// Delay returns the per-store poll interval.
func (m *ShopifyMonitor) Delay() time.Duration {
	if m.site.Delay > 0 {
		return m.site.Delay
	}
	if m.cfg.PollInterval > 0 {
		return m.cfg.PollInterval
	}
	return 3 * time.Second
}

// Stats returns a snapshot of the monitor's counters.
func (m *ShopifyMonitor) Stats() ShopifyStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Check performs one poll of the storefront catalog.
func (m *ShopifyMonitor) Check(ctx context.Context) ([]Detection, error) {
	m.mu.Lock()
	if time.Now().Before(m.backoffUntil) {
		m.mu.Unlock()
		return nil, ErrBackingOff
	}
	m.mu.Unlock()

	start := time.Now()
	products, err := m.fetchCatalog(ctx)
	m.metrics.ObservePoll("shopify", m.site.Host(), time.Since(start))
	if err != nil {
		m.metrics.IncPollError("shopify", m.site.Host())
		if err != ErrBackingOff {
			m.recordError()
		}
		return nil, err
	}

	m.mu.Lock()
	m.consecutiveErrors = 0
	m.stats.SuccessCount++
	now := time.Now().UTC()
	m.stats.LastCheck = &now
	m.mu.Unlock()

	return m.processProducts(ctx, products), nil
}

type shopifyVariant struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Option1   string `json:"option1"`
	Option2   string `json:"option2"`
	Option3   string `json:"option3"`
	SKU       string `json:"sku"`
	Price     string `json:"price"`
	Available bool   `json:"available"`
}

type shopifyProduct struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Handle   string           `json:"handle"`
	Variants []shopifyVariant `json:"variants"`
	Images   []struct {
		Src string `json:"src"`
	} `json:"images"`
}

func (m *ShopifyMonitor) fetchCatalog(ctx context.Context) ([]shopifyProduct, error) {
	base := strings.TrimRight(m.site.URL, "/")
	limit := m.cfg.PageLimit
	if limit <= 0 {
		limit = 250
	}
	maxPages := m.cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 10
	}

	var all []shopifyProduct
	for page := 1; page <= maxPages; page++ {
		url := fmt.Sprintf("%s/products.json?limit=%d&page=%d", base, limit, page)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build catalog request")
		}
		req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := m.httpClient.Do(req)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch catalog")
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			_ = resp.Body.Close()
			m.enterBackoff()
			return nil, ErrBackingOff
		case resp.StatusCode != http.StatusOK:
			_ = resp.Body.Close()
			return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog request returned %d", resp.StatusCode))
		}

		var payload struct {
			Products []shopifyProduct `json:"products"`
		}
		err = json.NewDecoder(io.LimitReader(resp.Body, 16<<20)).Decode(&payload)
		_ = resp.Body.Close()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog")
		}

		if len(payload.Products) == 0 {
			break
		}
		all = append(all, payload.Products...)
	}
	return all, nil
}

func (m *ShopifyMonitor) processProducts(ctx context.Context, products []shopifyProduct) []Detection {
	var detections []Detection

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, product := range products {
		productID := strconv.FormatInt(product.ID, 10)

		var available []shopifyVariant
		for _, v := range product.Variants {
			if v.Available {
				available = append(available, v)
			}
		}
		if len(available) == 0 {
			// Sold out entirely. Forget its variants so the next
			// availability reads as a restock.
			if _, ok := m.seenVariants[productID]; ok {
				m.seenVariants[productID] = map[string]struct{}{}
			}
			continue
		}

		live, ok := m.buildLiveProduct(product, available)
		if !ok {
			continue
		}

		currentVariants := make(map[string]struct{}, len(available))
		for _, v := range available {
			currentVariants[strconv.FormatInt(v.ID, 10)] = struct{}{}
		}

		previous, known := m.seenVariants[productID]
		switch {
		case !known:
			m.seenVariants[productID] = currentVariants
			m.lastPrice[productID] = live.Price
			if !m.firstSighting(ctx, productID) {
				continue
			}
			m.stats.ProductsFound++
			detections = append(detections, Detection{Type: enums.MonitorEventNewProduct, Product: live})
			m.logg.Info(m.logg.WithFields(ctx, map[string]any{
				"store": m.site.Name,
				"title": live.Title,
			}), "new product detected")
		default:
			restocked := false
			for id := range currentVariants {
				if _, seen := previous[id]; !seen {
					restocked = true
					break
				}
			}
			m.seenVariants[productID] = currentVariants

			last := m.lastPrice[productID]
			m.lastPrice[productID] = live.Price

			if restocked {
				detections = append(detections, Detection{Type: enums.MonitorEventRestock, Product: live})
				m.logg.Info(m.logg.WithFields(ctx, map[string]any{
					"store": m.site.Name,
					"title": live.Title,
				}), "restock detected")
			} else if !last.IsZero() && live.Price.LessThan(last) {
				detections = append(detections, Detection{Type: enums.MonitorEventPriceDrop, Product: live})
			}
		}
	}

	return detections
}

// firstSighting consults the shared seen store so a restart does not
// replay the whole catalog as new products.
func (m *ShopifyMonitor) firstSighting(ctx context.Context, productID string) bool {
	if m.seen == nil {
		return true
	}
	first, err := m.seen.MarkSeen(ctx, "shopify", m.site.Host(), productID, m.cfg.SeenProductTTL)
	if err != nil {
		m.logg.Warn(m.logg.WithField(ctx, "store", m.site.Name), "seen store unavailable")
		return true
	}
	return first
}

func (m *ShopifyMonitor) buildLiveProduct(product shopifyProduct, available []shopifyVariant) (LiveProduct, bool) {
	var sizes []string
	var variants []Variant
	for _, v := range available {
		size := extractSize(v)
		price, _ := decimal.NewFromString(v.Price)
		variants = append(variants, Variant{
			ID:        strconv.FormatInt(v.ID, 10),
			SKU:       v.SKU,
			Size:      size,
			Price:     price,
			Available: true,
		})
		if size != "" {
			sizes = append(sizes, size)
		}
	}

	if len(m.targetSizes) > 0 {
		sizes = FilterSizes(sizes, m.targetSizes)
		if len(sizes) == 0 {
			return LiveProduct{}, false
		}
	}

	price, _ := decimal.NewFromString(available[0].Price)
	var imageURL string
	if len(product.Images) > 0 {
		imageURL = product.Images[0].Src
	}
	var sku string
	if len(product.Variants) > 0 {
		sku = product.Variants[0].SKU
	}

	return LiveProduct{
		ID:         strconv.FormatInt(product.ID, 10),
		Title:      product.Title,
		URL:        strings.TrimRight(m.site.URL, "/") + "/products/" + product.Handle,
		SKU:        sku,
		Price:      price,
		ImageURL:   imageURL,
		Sizes:      sizes,
		Variants:   variants,
		DetectedAt: time.Now().UTC(),
	}, true
}

func extractSize(variant shopifyVariant) string {
	for _, option := range []string{variant.Option1, variant.Option2, variant.Option3} {
		if option != "" && IsSize(option) {
			return NormalizeSize(option)
		}
	}
	if IsSize(variant.Title) {
		return NormalizeSize(variant.Title)
	}
	return ""
}

func (m *ShopifyMonitor) recordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consecutiveErrors++
	m.stats.ErrorCount++
}

func (m *ShopifyMonitor) enterBackoff() {
	m.mu.Lock()
	defer m.mu.Unlock()

	backoff := baseBackoff << m.consecutiveErrors
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	m.backoffUntil = time.Now().Add(backoff)
	m.consecutiveErrors++
	m.stats.ErrorCount++

	m.logg.Warn(m.logg.WithFields(context.Background(), map[string]any{
		"store":   m.site.Name,
		"backoff": backoff.String(),
	}), "rate limited, backing off")
}
