package models

import "time"

// OrderType routes a ticket to the kitchen (KOT) or the bar (BOT)
type OrderType string

const (
	OrderTypeKitchen OrderType = "KOT"
	OrderTypeBar     OrderType = "BOT"
)

// Valid reports whether t is KOT or BOT.
func (t OrderType) Valid() bool {
	return t == OrderTypeKitchen || t == OrderTypeBar
}

// OrderStatus is a step of the order lifecycle
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderMaking    OrderStatus = "making"
	OrderServed    OrderStatus = "served"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// orderRank orders the forward path; cancelled sits outside it.
var orderRank = map[OrderStatus]int{
	OrderPending:   0,
	OrderMaking:    1,
	OrderServed:    2,
	OrderCompleted: 3,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	if s == OrderCancelled {
		return true
	}
	_, ok := orderRank[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransition reports whether an order may move from s to next.
// Orders only move forward; any open order may be cancelled.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	return orderRank[next] > orderRank[s]
}

// Default rates applied to an order when the request leaves them out.
const (
	DefaultTaxRate           = 16.0
	DefaultServiceChargeRate = 10.0
)

// LineItem is one menu item in an order or invoice, with name and price
// captured when the line was created.
type LineItem struct {
	MenuItem string  `json:"menuItem"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Totals are the derived amounts of a bill.
type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	ServiceCharge float64 `json:"serviceCharge"`
	Tax           float64 `json:"tax"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
}

// Order represents a cart submitted for a table
type Order struct {
	ID                  string      `json:"id"`
	Table               string      `json:"table"`
	TableNumber         string      `json:"tableNumber"`
	Items               []LineItem  `json:"items"`
	OrderType           OrderType   `json:"orderType"`
	Status              OrderStatus `json:"status"`
	Discount            float64     `json:"discount"`
	Taxes               float64     `json:"taxes"`
	ServiceCharge       float64     `json:"serviceCharge"`
	Subtotal            float64     `json:"subtotal"`
	DiscountAmount      float64     `json:"discountAmount"`
	TaxAmount           float64     `json:"taxAmount"`
	ServiceChargeAmount float64     `json:"serviceChargeAmount"`
	TotalAmount         float64     `json:"totalAmount"`
	CreatedBy           string      `json:"createdBy"`
	CreatedByName       string      `json:"createdByName,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// OrderFilter narrows order listings. Zero values match everything.
type OrderFilter struct {
	Status OrderStatus
	Table  string
	Since  time.Time
}
