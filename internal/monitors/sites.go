package monitors

import (
	"strings"
	"time"
)

// ShopifySite is a Shopify storefront to poll.
type ShopifySite struct {
	Name                string
	URL                 string
	Delay               time.Duration
	RequiresResidential bool
}

// Host returns the bare host used in seen-product keys.
func (s ShopifySite) Host() string {
	host := strings.TrimPrefix(strings.TrimPrefix(s.URL, "https://"), "http://")
	return strings.TrimSuffix(host, "/")
}

// FootsiteSite is a Footsite-family store reached through its JSON API.
type FootsiteSite struct {
	ID      string
	Name    string
	BaseURL string
	APIBase string
	APIKey  string
}

const footsiteAPIKey = "m38t89Q3dKvBcupKQ6KJm4ByOHNIu2q3"

// DefaultShopifySites returns the storefronts monitored out of the box.
func DefaultShopifySites() []ShopifySite {
	return []ShopifySite{
		{Name: "DTLR", URL: "https://www.dtlr.com", Delay: 3 * time.Second},
		{Name: "Shoe Palace", URL: "https://www.shoepalace.com", Delay: 3 * time.Second},
		{Name: "Jimmy Jazz", URL: "https://www.jimmyjazz.com", Delay: 3 * time.Second},
		{Name: "Hibbett", URL: "https://www.hibbett.com", Delay: 3500 * time.Millisecond},
		{Name: "Social Status", URL: "https://www.socialstatuspgh.com", Delay: 4 * time.Second},
		{Name: "Undefeated", URL: "https://undefeated.com", Delay: 3500 * time.Millisecond},
		{Name: "Concepts", URL: "https://cncpts.com", Delay: 4 * time.Second},
		{Name: "Bodega", URL: "https://bdgastore.com", Delay: 4 * time.Second},
		{Name: "Extra Butter", URL: "https://extrabutterny.com", Delay: 4 * time.Second},
		{Name: "Feature", URL: "https://feature.com", Delay: 4 * time.Second},
	}
}

// extraShopifySites are known storefronts addressable by id through the
// setup API but not polled by default.
var extraShopifySites = map[string]ShopifySite{
	"kith":             {Name: "Kith", URL: "https://kith.com", Delay: 3 * time.Second, RequiresResidential: true},
	"sneaker_politics": {Name: "Sneaker Politics", URL: "https://sneakerpolitics.com", Delay: 4 * time.Second},
	"bait":             {Name: "BAIT", URL: "https://www.baitme.com", Delay: 4 * time.Second},
	"notre":            {Name: "Notre", URL: "https://www.notre-shop.com", Delay: 4 * time.Second},
	"solefly":          {Name: "SoleFly", URL: "https://www.solefly.com", Delay: 4 * time.Second},
	"unknwn":           {Name: "UNKNWN", URL: "https://www.unknwn.com", Delay: 4 * time.Second},
	"lapstone_hammer":  {Name: "Lapstone & Hammer", URL: "https://www.lapstoneandhammer.com", Delay: 4 * time.Second},
	"oneness":          {Name: "Oneness", URL: "https://www.onenessboutique.com", Delay: 4 * time.Second},
	"wish_atl":         {Name: "Wish ATL", URL: "https://wishatl.com", Delay: 4 * time.Second},
	"xhibition":        {Name: "Xhibition", URL: "https://www.xhibition.co", Delay: 4 * time.Second},
}

// LookupShopifySite resolves a store id like "shoe_palace" or a display
// name like "Shoe Palace" to a known storefront.
func LookupShopifySite(id string) (ShopifySite, bool) {
	normalized := normalizeSiteID(id)
	for _, site := range DefaultShopifySites() {
		if normalizeSiteID(site.Name) == normalized {
			return site, true
		}
	}
	site, ok := extraShopifySites[normalized]
	return site, ok
}

var footsiteSites = map[string]FootsiteSite{
	"footlocker": {
		ID:      "footlocker",
		Name:    "Foot Locker",
		BaseURL: "https://www.footlocker.com",
		APIBase: "https://www.footlocker.com/api",
		APIKey:  footsiteAPIKey,
	},
	"champs": {
		ID:      "champs",
		Name:    "Champs Sports",
		BaseURL: "https://www.champssports.com",
		APIBase: "https://www.champssports.com/api",
		APIKey:  footsiteAPIKey,
	},
	"eastbay": {
		ID:      "eastbay",
		Name:    "Eastbay",
		BaseURL: "https://www.eastbay.com",
		APIBase: "https://www.eastbay.com/api",
		APIKey:  footsiteAPIKey,
	},
	"footaction": {
		ID:      "footaction",
		Name:    "Footaction",
		BaseURL: "https://www.footaction.com",
		APIBase: "https://www.footaction.com/api",
		APIKey:  footsiteAPIKey,
	},
	"kidsfootlocker": {
		ID:      "kidsfootlocker",
		Name:    "Kids Foot Locker",
		BaseURL: "https://www.kidsfootlocker.com",
		APIBase: "https://www.kidsfootlocker.com/api",
		APIKey:  footsiteAPIKey,
	},
}

// DefaultFootsiteIDs lists the Footsites polled when none are chosen.
func DefaultFootsiteIDs() []string {
	return []string{"footlocker", "champs", "eastbay"}
}

// LookupFootsite resolves a Footsite id.
func LookupFootsite(id string) (FootsiteSite, bool) {
	site, ok := footsiteSites[normalizeSiteID(id)]
	return site, ok
}

func normalizeSiteID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.ReplaceAll(id, " ", "_")
	return strings.ReplaceAll(id, "-", "_")
}
