package services

import (
	"math"

	"github.com/soilq/soilq-api/models"
)

// Pricing holds the shop's flat shipping fee and tax rate
type Pricing struct {
	ShippingFee float64
	TaxRate     float64
}

// Totals is the money breakdown of an order
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Quote prices items. Subtotal and tax are rounded to cents and the total is
// their exact sum with shipping.
func (p Pricing) Quote(items []models.OrderItem) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = roundCents(subtotal)
	tax := roundCents(subtotal * p.TaxRate)

	return Totals{
		Subtotal: subtotal,
		Shipping: p.ShippingFee,
		Tax:      tax,
		Total:    subtotal + p.ShippingFee + tax,
	}
}

// Consistent reports whether Total equals the sum of its parts
func (t Totals) Consistent() bool {
	return math.Abs(t.Total-(t.Subtotal+t.Shipping+t.Tax)) < 0.005
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
