package monitors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phantomlabs/phantom-backend/internal/proxies"
	"github.com/phantomlabs/phantom-backend/pkg/config"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
	"github.com/phantomlabs/phantom-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

// FootsiteStats is a point-in-time snapshot of one Footsite monitor.
type FootsiteStats struct {
	Name          string     `json:"name"`
	CheckCount    int        `json:"check_count"`
	ProductsFound int        `json:"products_found"`
	ErrorCount    int        `json:"error_count"`
	LastCheck     *time.Time `json:"last_check,omitempty"`
}

// FootsiteMonitor searches a Footsite-family store's product API for
// the configured keywords.
type FootsiteMonitor struct {
	site        FootsiteSite
	cfg         config.MonitorConfig
	logg        *logger.Logger
	metrics     *metrics.MonitorMetrics
	httpClient  *http.Client
	targetSizes []string

	mu        sync.Mutex
	keywords  []string
	seenSizes map[string]map[string]struct{}
	stats     FootsiteStats
}

// FootsiteMonitorParams carries the monitor's dependencies.
type FootsiteMonitorParams struct {
	Site        FootsiteSite
	Config      config.MonitorConfig
	Logger      *logger.Logger
	Metrics     *metrics.MonitorMetrics
	Proxy       *proxies.Proxy
	Keywords    []string
	TargetSizes []string
}

// NewFootsiteMonitor builds a keyword searcher for one Footsite.
func NewFootsiteMonitor(params FootsiteMonitorParams) (*FootsiteMonitor, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Site.APIBase == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "footsite api base required")
	}

	client := &http.Client{Timeout: params.Config.RequestTimeout}
	if client.Timeout <= 0 {
		client.Timeout = 20 * time.Second
	}
	if params.Proxy != nil {
		client.Transport = &http.Transport{Proxy: http.ProxyURL(params.Proxy.URL())}
	}

	return &FootsiteMonitor{
		site:        params.Site,
		cfg:         params.Config,
		logg:        params.Logger,
		metrics:     params.Metrics,
		httpClient:  client,
		targetSizes: NormalizeSizes(params.TargetSizes),
		keywords:    params.Keywords,
		seenSizes:   make(map[string]map[string]struct{}),
		stats:       FootsiteStats{Name: params.Site.Name},
	}, nil
}

// SetKeywords replaces the search keyword list.
func (m *FootsiteMonitor) SetKeywords(keywords []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keywords = keywords
}

// Stats returns a snapshot of the monitor's counters.
func (m *FootsiteMonitor) Stats() FootsiteStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Delay returns the per-site poll interval.
func (m *FootsiteMonitor) Delay() time.Duration {
	if m.cfg.PollInterval > 0 {
		return m.cfg.PollInterval
	}
	return 5 * time.Second
}

// Check searches every keyword once and reports new or restocked SKUs.
func (m *FootsiteMonitor) Check(ctx context.Context) ([]Detection, error) {
	m.mu.Lock()
	keywords := make([]string, len(m.keywords))
	copy(keywords, m.keywords)
	m.stats.CheckCount++
	m.mu.Unlock()

	start := time.Now()
	var detections []Detection
	var lastErr error

	for _, keyword := range keywords {
		products, err := m.search(ctx, keyword)
		if err != nil {
			lastErr = err
			m.metrics.IncPollError("footsite", m.site.ID)
			continue
		}
		for _, product := range products {
			if detection, ok := m.evaluate(product); ok {
				detections = append(detections, detection)
			}
		}
	}
	m.metrics.ObservePoll("footsite", m.site.ID, time.Since(start))

	m.mu.Lock()
	now := time.Now().UTC()
	m.stats.LastCheck = &now
	if lastErr != nil {
		m.stats.ErrorCount++
	}
	m.mu.Unlock()

	if len(detections) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return detections, nil
}

type footsiteUnit struct {
	Code             string `json:"code"`
	StockLevelStatus string `json:"stockLevelStatus"`
	Attributes       struct {
		Size string `json:"size"`
	} `json:"attributes"`
}

type footsiteProduct struct {
	SKU     string `json:"sku"`
	StyleID string `json:"styleId"`
	Name    string `json:"name"`
	Brand   struct {
		Name string `json:"name"`
	} `json:"brand"`
	Price struct {
		Value float64 `json:"value"`
	} `json:"price"`
	Images []struct {
		ImageType string `json:"imageType"`
		URL       string `json:"url"`
	} `json:"images"`
	SellableUnits []footsiteUnit `json:"sellableUnits"`
}

func (m *FootsiteMonitor) search(ctx context.Context, query string) ([]footsiteProduct, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("currentPage", "0")
	params.Set("pageSize", "60")
	params.Set("sort", "newArrivals")

	endpoint := fmt.Sprintf("%s/products/search?%s", strings.TrimRight(m.site.APIBase, "/"), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build search request")
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Origin", m.site.BaseURL)
	req.Header.Set("Referer", m.site.BaseURL+"/")
	req.Header.Set("x-api-key", m.site.APIKey)
	req.Header.Set("x-fl-request-id", uuid.NewString())

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute search request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("search returned %d", resp.StatusCode))
	}

	var payload struct {
		Products []footsiteProduct `json:"products"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode search response")
	}
	return payload.Products, nil
}

// evaluate reports whether the product is new or carries sizes not seen
// before, tracking state either way.
func (m *FootsiteMonitor) evaluate(product footsiteProduct) (Detection, bool) {
	if product.SKU == "" {
		return Detection{}, false
	}

	var sizes []string
	var variants []Variant
	for _, unit := range product.SellableUnits {
		if unit.StockLevelStatus != "inStock" || unit.Attributes.Size == "" {
			continue
		}
		size := NormalizeSize(unit.Attributes.Size)
		sizes = append(sizes, size)
		variants = append(variants, Variant{
			ID:        unit.Code,
			SKU:       unit.Code,
			Size:      size,
			Available: true,
		})
	}
	if len(sizes) == 0 {
		return Detection{}, false
	}
	if len(m.targetSizes) > 0 {
		sizes = FilterSizes(sizes, m.targetSizes)
		if len(sizes) == 0 {
			return Detection{}, false
		}
	}

	current := make(map[string]struct{}, len(sizes))
	for _, size := range sizes {
		current[size] = struct{}{}
	}

	m.mu.Lock()
	previous, known := m.seenSizes[product.SKU]
	restocked := false
	if known {
		for size := range current {
			if _, seen := previous[size]; !seen {
				restocked = true
				break
			}
		}
	}
	m.seenSizes[product.SKU] = current
	if !known || restocked {
		m.stats.ProductsFound++
	}
	m.mu.Unlock()

	if known && !restocked {
		return Detection{}, false
	}

	eventType := enums.MonitorEventNewProduct
	if restocked {
		eventType = enums.MonitorEventRestock
	}

	live := LiveProduct{
		ID:         product.SKU,
		Title:      product.Name,
		URL:        fmt.Sprintf("%s/product/~/%s.html", m.site.BaseURL, product.SKU),
		SKU:        product.SKU,
		Brand:      product.Brand.Name,
		Price:      decimal.NewFromFloat(product.Price.Value),
		ImageURL:   primaryImage(product),
		Sizes:      sizes,
		Variants:   variants,
		DetectedAt: time.Now().UTC(),
	}
	return Detection{Type: eventType, Product: live}, true
}

func primaryImage(product footsiteProduct) string {
	for _, img := range product.Images {
		if img.ImageType == "PRIMARY" {
			return img.URL
		}
	}
	return ""
}
