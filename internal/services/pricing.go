package services

import (
	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/shopspring/decimal"
)

// ComputeCustomerPrice applies the commission to a seller amount and rounds to cents.
// Percentage: amount * (1 + value/100). Flat: amount + value.
func ComputeCustomerPrice(sellerAmount float64, c models.Commission) float64 {
	amount := decimal.NewFromFloat(sellerAmount)
	value := decimal.NewFromFloat(c.Value)
	var price decimal.Decimal
	switch c.Mode {
	case models.CommissionFlat:
		price = amount.Add(value)
	default:
		price = amount.Mul(decimal.NewFromInt(1).Add(value.Div(decimal.NewFromInt(100))))
	}
	f, _ := price.Round(2).Float64()
	return f
}

// LineTotal is price * quantity plus GST (percent), rounded to cents.
func LineTotal(price, quantity, gstPercent float64) float64 {
	net := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(quantity))
	gst := net.Mul(decimal.NewFromFloat(gstPercent)).Div(decimal.NewFromInt(100))
	f, _ := net.Add(gst).Round(2).Float64()
	return f
}
