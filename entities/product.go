package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Localized is a text in the two storefront languages.
type Localized struct {
	En string `json:"en"`
	Ar string `json:"ar"`
}

type LocalizedList struct {
	En []string `json:"en"`
	Ar []string `json:"ar"`
}

type Product struct {
	Id            string              `json:"id"`
	Name          Localized           `json:"name"`
	Description   Localized           `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	Images        []string            `json:"images"`
	Category      string              `json:"category"`
	InStock       bool                `json:"inStock"`
	StockQuantity int                 `json:"stockQuantity"`
	Features      LocalizedList       `json:"features"`
	Rating        float64             `json:"rating"`
	ReviewCount   int                 `json:"reviewCount"`
	Slug          string              `json:"slug"`
}

// Discounted reports whether the product carries a pre-discount price.
func (p Product) Discounted() bool {
	return p.OriginalPrice.Valid
}

// Slugify lower-cases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

type ProductStats struct {
	Total      int            `json:"total"`
	InStock    int            `json:"inStock"`
	OutOfStock int            `json:"outOfStock"`
	LowStock   []string       `json:"lowStock"`
	Categories map[string]int `json:"categories"`
}

type CategorySummary struct {
	Name     string `json:"name"`
	Products int    `json:"products"`
	InStock  int    `json:"inStock"`
}
