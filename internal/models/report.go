package models

// ItemSales is how much of one menu item was sold in a reporting window
type ItemSales struct {
	MenuItem string  `json:"menuItem"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	Orders   int     `json:"orders"`
}

// SalesSummary aggregates orders over a reporting window
type SalesSummary struct {
	Days          int                 `json:"days"`
	OrdersByState map[OrderStatus]int `json:"ordersByStatus"`
	Revenue       float64             `json:"revenue"`
	AverageTicket float64             `json:"averageTicket"`
}

// StockAlert is a finding of the inventory monitor
type StockAlert struct {
	Kind     string `json:"kind"`
	Resource string `json:"resource"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Minimum  int    `json:"minimum,omitempty"`
	DaysLeft int    `json:"daysLeft,omitempty"`
}
