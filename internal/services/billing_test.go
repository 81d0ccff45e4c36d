package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name  string
		items []models.LineItem
		rates Rates
		want  models.Totals
	}{
		{
			name:  "two lattes with defaults",
			items: []models.LineItem{{Price: 4.00, Quantity: 2}},
			rates: DefaultRates(),
			want:  models.Totals{Subtotal: 8, ServiceCharge: 0.8, Tax: 1.28, Total: 10.08},
		},
		{
			name:  "discount",
			items: []models.LineItem{{Price: 10, Quantity: 1}, {Price: 5, Quantity: 2}},
			rates: Rates{ServiceCharge: 10, Tax: 16, Discount: 5},
			want:  models.Totals{Subtotal: 20, ServiceCharge: 2, Tax: 3.2, Discount: 1, Total: 24.2},
		},
		{
			name:  "rounding",
			items: []models.LineItem{{Price: 2.5, Quantity: 3}},
			rates: Rates{Tax: 5},
			want:  models.Totals{Subtotal: 7.5, Tax: 0.38, Total: 7.88},
		},
		{
			name:  "empty",
			rates: DefaultRates(),
			want:  models.Totals{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, tt.rates)
			assert.InDelta(t, tt.want.Subtotal, got.Subtotal, 1e-9)
			assert.InDelta(t, tt.want.ServiceCharge, got.ServiceCharge, 1e-9)
			assert.InDelta(t, tt.want.Tax, got.Tax, 1e-9)
			assert.InDelta(t, tt.want.Discount, got.Discount, 1e-9)
			assert.InDelta(t, tt.want.Total, got.Total, 1e-9)
		})
	}
}

func TestRatesValidate(t *testing.T) {
	assert.NoError(t, DefaultRates().validate())
	assert.ErrorIs(t, Rates{Tax: 101}.validate(), models.ErrInvalidInput)
	assert.ErrorIs(t, Rates{Discount: -1}.validate(), models.ErrInvalidInput)
}
