package models

import "time"

// InvoiceStatus is the payment state of an invoice
type InvoiceStatus string

const (
	InvoicePaid      InvoiceStatus = "paid"
	InvoicePending   InvoiceStatus = "pending"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePaid, InvoicePending, InvoiceCancelled:
		return true
	}
	return false
}

// CustomerDetails is the contact block printed on an invoice
type CustomerDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Invoice represents a billing document
type Invoice struct {
	ID                string          `json:"id"`
	InvoiceNumber     string          `json:"invoiceNumber"`
	CustomerDetails   CustomerDetails `json:"customerDetails"`
	Items             []LineItem      `json:"items"`
	TaxRate           float64         `json:"taxRate"`
	ServiceChargeRate float64         `json:"serviceChargeRate"`
	DiscountRate      float64         `json:"discountRate"`
	Subtotal          float64         `json:"subtotal"`
	Tax               float64         `json:"tax"`
	ServiceCharge     float64         `json:"serviceCharge"`
	Discount          float64         `json:"discount"`
	Total             float64         `json:"total"`
	Date              time.Time       `json:"date"`
	Status            InvoiceStatus   `json:"status"`
	OrderID           *string         `json:"orderId,omitempty"`
	CreatedBy         string          `json:"createdBy,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	Status InvoiceStatus
}
