package domain

import "strings"

// Product is a catalog entry as served by the backend.
type Product struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	OldPrice      *float64 `json:"oldPrice,omitempty"`
	StockQuantity int      `json:"stockQuantity"`
	Category      string   `json:"category,omitempty"`
	Tag           string   `json:"tag,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Active        bool     `json:"active"`
}

// CanIncrement reports whether one more unit may be added on top of current.
// A product with no stock can never be incremented.
func (p *Product) CanIncrement(current int) bool {
	return p.StockQuantity > 0 && current < p.StockQuantity
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// Discounted reports whether the product carries a higher previous price.
func (p *Product) Discounted() bool {
	return p.OldPrice != nil && *p.OldPrice > p.Price
}

// Visibility is the back-office label for the active flag.
func (p *Product) Visibility() string {
	if p.Active {
		return "Active"
	}
	return "Archived"
}

// OtherCategory groups products that carry no category.
const OtherCategory = "Other"

// Categories is the fixed list offered by the back office.
var Categories = []string{
	"Diagnostic Tools",
	"Mobility Aids",
	"Surgical Instruments",
	"PPE",
	"Sleep Apnea",
	"CPAP Masks",
	"Accessories",
	"Hospital Equip",
}

// IsValidCategory checks a category against the fixed list, ignoring case.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// ProductInput is the back-office payload for creating or updating a product.
type ProductInput struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" validate:"gt=0"`
	OldPrice      *float64 `json:"oldPrice"`
	StockQuantity int      `json:"stockQuantity" validate:"gte=0"`
	Category      string   `json:"category" validate:"required"`
	Tag           string   `json:"tag"`
	ImageURL      string   `json:"imageUrl" validate:"omitempty,url"`
}
