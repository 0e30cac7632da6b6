package reference

import (
	"strings"

	"github.com/barribox/barribox-backend/pkg/models"
	"github.com/shopspring/decimal"
)

var partners = []models.Partner{
	{ID: "p1", Name: "Amazon", Logo: "📦", Color: "#ff9900"},
	{ID: "p2", Name: "Ontime", Logo: "🚚", Color: "#004a99"},
	{ID: "p3", Name: "Paack", Logo: "🚀", Color: "#e41c2c"},
	{ID: "p4", Name: "UPS", Logo: "🤎", Color: "#351c15"},
}

var defaultCatalog = []string{"Tostadora Retro", "Silla Ergonómica", "Auriculares Pro"}

var (
	catalogPrice = decimal.RequireFromString("45.99")
	searchPrice  = decimal.RequireFromString("34.99")
)

// CatalogItem is a product offered through a partner storefront.
type CatalogItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func Partners() []models.Partner {
	out := make([]models.Partner, len(partners))
	copy(out, partners)
	return out
}

func FindPartner(id string) (models.Partner, bool) {
	for _, p := range partners {
		if p.ID == id {
			return p, true
		}
	}
	return models.Partner{}, false
}

// Catalog returns the searched item when the query has more than one
// character, otherwise the default showcase.
func Catalog(query string) []CatalogItem {
	query = strings.TrimSpace(query)
	if len([]rune(query)) > 1 {
		return []CatalogItem{{Name: query, Price: searchPrice}}
	}
	out := make([]CatalogItem, 0, len(defaultCatalog))
	for _, name := range defaultCatalog {
		out = append(out, CatalogItem{Name: name, Price: catalogPrice})
	}
	return out
}
