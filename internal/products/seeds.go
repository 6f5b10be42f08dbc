package products

import (
	"github.com/google/uuid"
	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var adultSizeNegatives = []string{"-kids", "-gs", "-ps", "-td", "-infant", "-toddler", "-preschool", "-gradeschool"}

// builtinCatalog holds the pre-tuned hyped releases seeded on first boot.
func builtinCatalog() []models.CuratedProduct {
	return []models.CuratedProduct{
		seed("Off-White x Nike Dunk Low Pine Green", "nike",
			[]string{"ow dunk pine green", "off white dunk", "virgil dunk", "off white pine green"},
			"off white dunk ow dunk pine green -kids -gs -ps -td -infant -toddler",
			100, 800, enums.PriorityHigh),
		seed("Fragment x Jordan 1 High", "jordan",
			[]string{"fragment jordan 1", "fragment aj1", "frag jordan", "fragment design jordan"},
			"fragment jordan 1 fragment aj1 frag jordan -kids -gs -ps -td",
			170, 1200, enums.PriorityHigh),
		seed("Travis Scott Jordan 1 Low Mocha", "jordan",
			[]string{"travis mocha", "cactus jack mocha", "travis scott jordan 1 low", "ts jordan 1 mocha"},
			"travis scott jordan 1 low ts jordan 1 mocha travis mocha -kids -gs",
			150, 650, enums.PriorityHigh),
		seed("Jordan 4 Retro Black Cat", "jordan",
			[]string{"jordan 4 black cat", "aj4 black", "black cat 4", "jordan iv black cat"},
			"jordan 4 black cat aj4 black jordan iv black cat -kids -gs -ps",
			130, 280, enums.PriorityHigh),
		seed("Jordan 1 Retro High Chicago Lost and Found", "jordan",
			[]string{"aj1 chicago", "chicago lost found", "chicago 1s", "jordan 1 chicago"},
			"jordan 1 chicago aj1 chicago chicago lost found -kids -gs -ps",
			170, 350, enums.PriorityHigh),
		seed("Nike Dunk Low Panda", "nike",
			[]string{"dunk low panda", "panda dunk", "black white dunk", "dunk panda"},
			"dunk low panda panda dunk black white dunk -kids -gs -ps -td",
			100, 180, enums.PriorityMedium),
		seed("Jordan 11 Retro Bred", "jordan",
			[]string{"bred 11", "aj11 bred", "jordan 11 bred", "jordan xi bred"},
			"jordan 11 bred aj11 bred bred 11 -kids -gs -ps -td",
			220, 420, enums.PriorityMedium),
		seed("New Balance 550 White Grey", "new balance",
			[]string{"nb 550", "new balance 550", "550 white grey", "nb550"},
			"new balance 550 nb 550 550 white grey -kids -gs -ps",
			110, 180, enums.PriorityMedium),
		seed("Yeezy Boost 350 V2 Onyx", "yeezy",
			[]string{"yeezy 350 onyx", "yeezy onyx", "350 v2 onyx", "boost 350 onyx"},
			"yeezy 350 onyx yeezy onyx 350 v2 onyx -kids -gs -ps",
			230, 280, enums.PriorityMedium),
		seed("Jordan 4 Retro Military Blue", "jordan",
			[]string{"jordan 4 military blue", "aj4 military", "military blue 4", "jordan iv military"},
			"jordan 4 military blue aj4 military military blue 4 -kids -gs",
			200, 300, enums.PriorityMedium),
	}
}

func seed(name, brand string, keywords []string, search string, retail, resale int64, priority enums.Priority) models.CuratedProduct {
	return models.CuratedProduct{
		ID:               uuid.New(),
		Name:             name,
		Brand:            brand,
		Keywords:         keywords,
		NegativeKeywords: adultSizeNegatives,
		OptimizedSearch:  search,
		RetailPrice:      decimal.NewFromInt(retail),
		ResalePrice:      decimal.NewFromInt(resale),
		Priority:         priority,
		Enabled:          true,
		Builtin:          true,
	}
}
