package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phantomlabs/phantom-backend/pkg/enums"
)

// CuratedProduct is an operator-curated release the monitors match
// live products against.
type CuratedProduct struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	Brand            string          `gorm:"column:brand;not null"`
	SKU              *string         `gorm:"column:sku"`
	StyleCode        *string         `gorm:"column:style_code"`
	Keywords         []string        `gorm:"column:keywords;serializer:json;not null"`
	NegativeKeywords []string        `gorm:"column:negative_keywords;serializer:json;not null"`
	OptimizedSearch  string          `gorm:"column:optimized_search;not null"`
	RetailPrice      decimal.Decimal `gorm:"column:retail_price;type:numeric(10,2);not null"`
	ResalePrice      decimal.Decimal `gorm:"column:resale_price;type:numeric(10,2);not null"`
	Priority         enums.Priority  `gorm:"column:priority;not null;default:medium"`
	ReleaseDate      *time.Time      `gorm:"column:release_date"`
	Enabled          bool            `gorm:"column:enabled;not null;default:true"`
	Builtin          bool            `gorm:"column:builtin;not null;default:false"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ExpectedProfit is the spread between resale and retail.
func (p CuratedProduct) ExpectedProfit() decimal.Decimal {
	return p.ResalePrice.Sub(p.RetailPrice)
}

// ProfitRatio is resale over retail; zero when retail is zero.
func (p CuratedProduct) ProfitRatio() decimal.Decimal {
	if p.RetailPrice.IsZero() {
		return decimal.Zero
	}
	return p.ResalePrice.Div(p.RetailPrice).Round(2)
}
