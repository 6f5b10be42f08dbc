package products

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// highPriorityProfitFloor marks a product as feed-worthy even when its
// priority is not high.
var highPriorityProfitFloor = decimal.NewFromInt(100)

// defaultProfitFloor filters the profitable listing.
var defaultProfitFloor = decimal.NewFromInt(50)

// Service manages the curated release catalog.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Create(ctx context.Context, params CreateParams) (*models.CuratedProduct, error)
	Delete(ctx context.Context, id uuid.UUID) error
	All(ctx context.Context) ([]models.CuratedProduct, error)
	HighPriority(ctx context.Context) ([]models.CuratedProduct, error)
	Profitable(ctx context.Context, minProfit *decimal.Decimal) ([]models.CuratedProduct, error)
	Import(ctx context.Context, r io.Reader) (int, error)
	Match(ctx context.Context, title string) ([]Match, error)
	SeedBuiltin(ctx context.Context) (int, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination and filtering for the catalog.
type ListParams struct {
	Limit    int
	Cursor   string
	Priority string
}

// ListResult wraps returned products and the cursor for the next page.
type ListResult struct {
	Items  []models.CuratedProduct `json:"items"`
	Cursor string                  `json:"cursor"`
}

// CreateParams carries a new catalog entry.
type CreateParams struct {
	Name             string
	Brand            string
	SKU              *string
	StyleCode        *string
	Keywords         []string
	NegativeKeywords []string
	OptimizedSearch  string
	RetailPrice      decimal.Decimal
	ResalePrice      decimal.Decimal
	Priority         string
}

// NewService wires catalog dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Priority != "" {
		if _, err := enums.ParsePriority(params.Priority); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority filter")
		}
	}

	query := listProductsParams{
		Limit:    params.Limit,
		Priority: params.Priority,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.CuratedProduct, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if len(params.Keywords) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one keyword required")
	}
	priority := enums.PriorityMedium
	if params.Priority != "" {
		parsed, err := enums.ParsePriority(params.Priority)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
		priority = parsed
	}
	if params.RetailPrice.IsNegative() || params.ResalePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}

	product := &models.CuratedProduct{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(params.Name),
		Brand:            strings.ToLower(strings.TrimSpace(params.Brand)),
		SKU:              params.SKU,
		StyleCode:        params.StyleCode,
		Keywords:         params.Keywords,
		NegativeKeywords: params.NegativeKeywords,
		OptimizedSearch:  params.OptimizedSearch,
		RetailPrice:      params.RetailPrice,
		ResalePrice:      params.ResalePrice,
		Priority:         priority,
		Enabled:          true,
	}
	if product.NegativeKeywords == nil {
		product.NegativeKeywords = []string{}
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// HighPriority returns products the monitors treat as must-cop: marked high
// priority outright or carrying an expected profit above $100.
// All returns the full curated catalog without pagination.
func (s *service) All(ctx context.Context) ([]models.CuratedProduct, error) {
	catalog, err := s.repo.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	return catalog, nil
}

func (s *service) HighPriority(ctx context.Context) ([]models.CuratedProduct, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}

	var out []models.CuratedProduct
	for _, p := range all {
		if !p.Enabled {
			continue
		}
		if p.Priority == enums.PriorityHigh || p.ExpectedProfit().GreaterThan(highPriorityProfitFloor) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *service) Profitable(ctx context.Context, minProfit *decimal.Decimal) ([]models.CuratedProduct, error) {
	floor := defaultProfitFloor
	if minProfit != nil {
		floor = *minProfit
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}

	var out []models.CuratedProduct
	for _, p := range all {
		if p.Enabled && p.ExpectedProfit().GreaterThanOrEqual(floor) {
			out = append(out, p)
		}
	}
	return out, nil
}

// importPayload mirrors the JSON export format shared between installs.
type importPayload struct {
	Products []importedProduct `json:"keywords_by_shoe"`
}

type importedProduct struct {
	Name             string   `json:"name"`
	Brand            string   `json:"brand"`
	PositiveKeywords []string `json:"positive_keywords"`
	NegativeKeywords []string `json:"negative_keywords"`
	OptimizedSearch  string   `json:"optimized_search"`
	RetailPrice      float64  `json:"retail_price"`
	CurrentPrice     float64  `json:"current_price"`
	Priority         string   `json:"priority"`
	SKU              *string  `json:"sku"`
	StyleCode        *string  `json:"style_code"`
	Enabled          *bool    `json:"enabled"`
}

// Import reads a catalog export and appends its entries. Entries with no
// name or keywords are skipped rather than failing the whole batch.
func (s *service) Import(ctx context.Context, r io.Reader) (int, error) {
	var payload importPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed product export")
	}

	var batch []models.CuratedProduct
	for _, item := range payload.Products {
		if strings.TrimSpace(item.Name) == "" || len(item.PositiveKeywords) == 0 {
			continue
		}
		priority, err := enums.ParsePriority(item.Priority)
		if err != nil {
			priority = enums.PriorityMedium
		}
		enabled := true
		if item.Enabled != nil {
			enabled = *item.Enabled
		}
		negatives := item.NegativeKeywords
		if negatives == nil {
			negatives = []string{}
		}
		batch = append(batch, models.CuratedProduct{
			ID:               uuid.New(),
			Name:             strings.TrimSpace(item.Name),
			Brand:            strings.ToLower(strings.TrimSpace(item.Brand)),
			SKU:              item.SKU,
			StyleCode:        item.StyleCode,
			Keywords:         item.PositiveKeywords,
			NegativeKeywords: negatives,
			OptimizedSearch:  item.OptimizedSearch,
			RetailPrice:      decimal.NewFromFloat(item.RetailPrice),
			ResalePrice:      decimal.NewFromFloat(item.CurrentPrice),
			Priority:         priority,
			Enabled:          enabled,
		})
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import products")
	}
	return len(batch), nil
}

func (s *service) Match(ctx context.Context, title string) ([]Match, error) {
	if strings.TrimSpace(title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	catalog, err := s.repo.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	return MatchTitle(catalog, title), nil
}

// SeedBuiltin loads the built-in catalog once, on an empty table.
func (s *service) SeedBuiltin(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if count > 0 {
		return 0, nil
	}

	catalog := builtinCatalog()
	if err := s.repo.CreateBatch(ctx, catalog); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed builtin products")
	}
	return len(catalog), nil
}
