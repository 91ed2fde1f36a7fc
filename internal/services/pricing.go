package services

import (
	"math"

	"zando/internal/catalog"
	"zando/internal/domain"
)

// Line is a cart line joined with the product it refers to.
type Line struct {
	Item          domain.CartLineItem
	Product       domain.Product
	Detail        catalog.Line
	UnitPrice     float64
	OriginalPrice float64
	Total         float64
}

type Totals struct {
	Count       int
	Subtotal    float64
	TotalSave   float64
	DeliveryFee float64
	AmountToPay float64
}

// Join resolves cart lines against products. Lines whose product is not in
// products are left out of the result but stay in the cart.
func Join(items []domain.CartLineItem, products map[int64]domain.Product) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		orig := p.OriginalPrice
		if orig <= 0 {
			orig = p.Price
		}
		lines = append(lines, Line{
			Item:          it,
			Product:       p,
			Detail:        catalog.Describe(p, it.VariantID, it.SizeID),
			UnitPrice:     p.Price,
			OriginalPrice: orig,
			Total:         round2(p.Price * float64(it.Quantity)),
		})
	}
	return lines
}

// Summarize prices the joined lines:
// subtotal = Σ price × qty, totalSave = Σ (original − price) × qty,
// amountToPay = subtotal + fee.
func Summarize(lines []Line, fee float64) Totals {
	var t Totals
	for _, l := range lines {
		q := float64(l.Item.Quantity)
		t.Count += l.Item.Quantity
		t.Subtotal += l.UnitPrice * q
		t.TotalSave += (l.OriginalPrice - l.UnitPrice) * q
	}
	t.Subtotal = round2(t.Subtotal)
	t.TotalSave = round2(t.TotalSave)
	t.DeliveryFee = round2(fee)
	t.AmountToPay = round2(t.Subtotal + t.DeliveryFee)
	return t
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
