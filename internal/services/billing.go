package services

import (
	"math"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

// Rates are the percentages applied to a bill subtotal
type Rates struct {
	ServiceCharge float64
	Tax           float64
	Discount      float64
}

// DefaultRates are used for orders that leave the rates out
func DefaultRates() Rates {
	return Rates{ServiceCharge: models.DefaultServiceChargeRate, Tax: models.DefaultTaxRate}
}

func (r Rates) validate() error {
	for name, v := range map[string]float64{"serviceCharge": r.ServiceCharge, "taxes": r.Tax, "discount": r.Discount} {
		if v < 0 || v > 100 || math.IsNaN(v) {
			return invalid("%s must be between 0 and 100", name)
		}
	}
	return nil
}

// ComputeTotals derives every amount of a bill from its lines.
// Each component is rounded to cents; the total is rounded from the
// unrounded components.
func ComputeTotals(items []models.LineItem, rates Rates) models.Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	sc := subtotal * rates.ServiceCharge / 100
	tax := subtotal * rates.Tax / 100
	discount := subtotal * rates.Discount / 100

	return models.Totals{
		Subtotal:      round2(subtotal),
		ServiceCharge: round2(sc),
		Tax:           round2(tax),
		Discount:      round2(discount),
		Total:         round2(subtotal + sc + tax - discount),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
