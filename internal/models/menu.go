package models

import "time"

// Categories are the menu sections.
var Categories = []string{"Hot Coffee", "Cold Coffee", "Tea", "Snacks", "Desserts", "Main Course"}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// DefaultMinimumStock is used when a menu item is created without a threshold.
const DefaultMinimumStock = 10

// MenuItem represents a sellable product
type MenuItem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Price         float64    `json:"price"`
	Category      string     `json:"category"`
	Image         string     `json:"image,omitempty"`
	StockQuantity int        `json:"stockQuantity"`
	MinimumStock  int        `json:"minimumStock"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	IsAvailable   bool       `json:"isAvailable"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// LowStock reports whether the item is at or below its minimum threshold.
func (m *MenuItem) LowStock() bool {
	return m.StockQuantity <= m.MinimumStock
}

// MenuFilter narrows menu listings
type MenuFilter struct {
	Category      string
	AvailableOnly bool
}

// Supply is a raw inventory article such as coffee beans or cups.
type Supply struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Brand         string     `json:"brand"`
	Specification string     `json:"specification,omitempty"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	CostPrice     float64    `json:"costPrice"`
	Quantity      int        `json:"quantity"`
	Image         string     `json:"image,omitempty"`
	DateAdded     time.Time  `json:"dateAdded"`
	LastUpdated   time.Time  `json:"lastUpdated"`
}
