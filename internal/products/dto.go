package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
)

// ProductDTO is the transport shape for a curated product.
type ProductDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Brand            string          `json:"brand"`
	SKU              *string         `json:"sku,omitempty"`
	StyleCode        *string         `json:"style_code,omitempty"`
	Keywords         []string        `json:"keywords"`
	NegativeKeywords []string        `json:"negative_keywords"`
	OptimizedSearch  string          `json:"optimized_search"`
	RetailPrice      decimal.Decimal `json:"retail_price"`
	ResalePrice      decimal.Decimal `json:"resale_price"`
	ExpectedProfit   decimal.Decimal `json:"expected_profit"`
	Priority         enums.Priority  `json:"priority"`
	ReleaseDate      *time.Time      `json:"release_date,omitempty"`
	Enabled          bool            `json:"enabled"`
	Builtin          bool            `json:"builtin"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func FromModel(p *models.CuratedProduct) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:               p.ID,
		Name:             p.Name,
		Brand:            p.Brand,
		SKU:              p.SKU,
		StyleCode:        p.StyleCode,
		Keywords:         append([]string(nil), p.Keywords...),
		NegativeKeywords: append([]string(nil), p.NegativeKeywords...),
		OptimizedSearch:  p.OptimizedSearch,
		RetailPrice:      p.RetailPrice,
		ResalePrice:      p.ResalePrice,
		ExpectedProfit:   p.ExpectedProfit(),
		Priority:         p.Priority,
		ReleaseDate:      p.ReleaseDate,
		Enabled:          p.Enabled,
		Builtin:          p.Builtin,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func FromModels(items []models.CuratedProduct) []ProductDTO {
	out := make([]ProductDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
