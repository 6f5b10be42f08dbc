package products

import (
	"sort"
	"strings"

	"github.com/phantomlabs/phantom-backend/pkg/db/models"
)

// Match pairs a curated product with the confidence that a live listing
// refers to it.
type Match struct {
	Product    models.CuratedProduct
	Confidence float64
}

// MatchTitle scores every enabled curated product against a live listing
// title. Products whose negative keywords appear in the title are rejected
// outright. Results are sorted by confidence, highest first.
func MatchTitle(catalog []models.CuratedProduct, title string) []Match {
	normalized := strings.ToLower(title)

	var matches []Match
	for _, product := range catalog {
		if !product.Enabled {
			continue
		}
		confidence, ok := scoreProduct(product, normalized)
		if !ok {
			continue
		}
		matches = append(matches, Match{Product: product, Confidence: confidence})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// scoreProduct returns the confidence for one product, or false when the
// listing is rejected or matches no keywords.
func scoreProduct(product models.CuratedProduct, title string) (float64, bool) {
	for _, negative := range product.NegativeKeywords {
		// Negative keywords are stored with the search-syntax "-" prefix.
		cleaned := strings.ToLower(strings.TrimLeft(negative, "-"))
		if cleaned != "" && strings.Contains(title, cleaned) {
			return 0, false
		}
	}

	matched := 0
	for _, keyword := range product.Keywords {
		if keyword != "" && strings.Contains(title, strings.ToLower(keyword)) {
			matched++
		}
	}
	if matched == 0 {
		return 0, false
	}

	// Confidence ramps against half the keyword list, floored at two, so a
	// single keyword hit cannot reach full confidence on its own.
	denominator := float64(len(product.Keywords)) * 0.5
	if denominator < 2 {
		denominator = 2
	}
	confidence := float64(matched) / denominator
	if confidence > 1 {
		confidence = 1
	}

	if containsField(title, product.SKU) {
		confidence = clamp(confidence + 0.3)
	}
	if containsField(title, product.StyleCode) {
		confidence = clamp(confidence + 0.3)
	}

	return confidence, true
}

func containsField(title string, field *string) bool {
	if field == nil {
		return false
	}
	value := strings.ToLower(strings.TrimSpace(*field))
	return value != "" && strings.Contains(title, value)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
