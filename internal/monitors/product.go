package monitors

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Variant is one purchasable unit of a live product.
type Variant struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku,omitempty"`
	Size      string          `json:"size,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

// LiveProduct is a product observed on a monitored store.
type LiveProduct struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	SKU        string          `json:"sku,omitempty"`
	Brand      string          `json:"brand,omitempty"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"image_url,omitempty"`
	Sizes      []string        `json:"sizes"`
	Variants   []Variant       `json:"variants,omitempty"`
	DetectedAt time.Time       `json:"detected_at"`
}

var (
	nonNumericPattern = regexp.MustCompile(`[^0-9.]`)
	sizePrefixPattern = regexp.MustCompile(`(?i)(US|SIZE|MENS?|WOMENS?)\s*`)

	letterSizes = map[string]struct{}{
		"XS": {}, "S": {}, "M": {}, "L": {}, "XL": {},
		"XXL": {}, "2XL": {}, "3XL": {}, "OS": {}, "ONE SIZE": {},
	}
)

// IsSize reports whether a variant option value looks like a shoe or
// apparel size. Numeric shoe sizes run 3 through 18.
func IsSize(value string) bool {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return false
	}
	if _, ok := letterSizes[value]; ok {
		return true
	}
	digits := nonNumericPattern.ReplaceAllString(value, "")
	num, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return false
	}
	return num >= 3 && num <= 18
}

// NormalizeSize strips region and gender prefixes so sizes from
// different stores compare equal.
func NormalizeSize(size string) string {
	size = strings.ToUpper(strings.TrimSpace(size))
	return strings.TrimSpace(sizePrefixPattern.ReplaceAllString(size, ""))
}

// NormalizeSizes normalizes a target size list, dropping blanks.
func NormalizeSizes(sizes []string) []string {
	out := make([]string, 0, len(sizes))
	for _, size := range sizes {
		normalized := NormalizeSize(size)
		if normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

// FilterSizes keeps only the sizes present in the normalized target
// list. An empty target list keeps everything.
func FilterSizes(sizes, targets []string) []string {
	if len(targets) == 0 {
		return sizes
	}
	wanted := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		wanted[t] = struct{}{}
	}
	var out []string
	for _, size := range sizes {
		if _, ok := wanted[size]; ok {
			out = append(out, size)
		}
	}
	return out
}
