package catalog

import "zando/internal/domain"

// LowStock is the quantity below which a variant shows as LOW_STOCK.
const LowStock = 5

// Availability converts a variant's stock to IN_STOCK / LOW_STOCK /
// OUT_OF_STOCK. A product switched off by the admin is out of stock; a
// variant without a reported quantity follows the product switch.
func Availability(p domain.Product, v domain.Variant) domain.Availability {
	if p.IsAvailable != nil && !*p.IsAvailable {
		return domain.Availability{Status: "OUT_OF_STOCK"}
	}
	if v.Quantity == nil {
		return domain.Availability{Status: "IN_STOCK"}
	}
	qty := *v.Quantity
	status := "OUT_OF_STOCK"
	switch {
	case qty >= LowStock:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}
}
