// Package catalog turns backend products into display-ready views and
// caches catalog reads.
package catalog

import (
	"math"

	"zando/internal/domain"
)

const PlaceholderImage = "/static/img/placeholder.png"

// View is a product shaped for the product page and cards.
type View struct {
	Product       domain.Product
	Colors        []string
	Selected      domain.Variant
	Images        []string
	Sizes         []domain.Size
	MainImage     string
	Price         float64
	OriginalPrice float64
	Discount      int
	Available     bool
	Stock         domain.Availability
}

// Normalize selects variantID (the first variant when zero or unknown) and
// fills the derived display fields.
func Normalize(p domain.Product, variantID int64) View {
	v := View{
		Product:       p,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Discount:      DiscountPercent(p),
		Available:     p.IsAvailable == nil || *p.IsAvailable,
		MainImage:     PlaceholderImage,
	}
	if v.OriginalPrice < v.Price {
		v.OriginalPrice = 0
	}
	opts := p.Options()
	for _, o := range opts {
		if o.Color != "" {
			v.Colors = append(v.Colors, o.Color)
		}
	}
	if len(opts) == 0 {
		v.Stock = Availability(p, domain.Variant{})
		return v
	}
	v.Selected = opts[0]
	for _, o := range opts {
		if o.VariantID == variantID {
			v.Selected = o
			break
		}
	}
	v.Images = v.Selected.Images
	v.Sizes = v.Selected.Sizes
	v.Stock = Availability(p, v.Selected)
	if len(v.Images) > 0 && v.Images[0] != "" {
		v.MainImage = v.Images[0]
	}
	return v
}

// DiscountPercent returns the backend discount, or derives it from the
// original price when the backend left it empty.
func DiscountPercent(p domain.Product) int {
	if p.Discount > 0 {
		return int(math.Round(p.Discount))
	}
	if p.OriginalPrice > p.Price && p.OriginalPrice > 0 {
		return int(math.Round((p.OriginalPrice - p.Price) / p.OriginalPrice * 100))
	}
	return 0
}

// Line is the color, size and image of one cart or order line.
type Line struct {
	Color string
	Size  string
	Image string
}

// Describe resolves the variant and size a line refers to. Unknown ids fall
// back to the first variant and "N/A".
func Describe(p domain.Product, variantID, sizeID int64) Line {
	l := Line{Color: "N/A", Size: "N/A", Image: PlaceholderImage}
	opts := p.Options()
	if len(opts) == 0 {
		return l
	}
	v := opts[0]
	for _, o := range opts {
		if o.VariantID == variantID {
			v = o
			break
		}
	}
	if v.Color != "" {
		l.Color = v.Color
	}
	if len(v.Images) > 0 && v.Images[0] != "" {
		l.Image = v.Images[0]
	}
	for _, s := range v.Sizes {
		if s.SizeID == sizeID {
			l.Size = s.Name
			break
		}
	}
	return l
}

// FirstImage is the first image of the first variant, or the placeholder.
func FirstImage(p domain.Product) string {
	opts := p.Options()
	if len(opts) > 0 && len(opts[0].Images) > 0 && opts[0].Images[0] != "" {
		return opts[0].Images[0]
	}
	return PlaceholderImage
}
