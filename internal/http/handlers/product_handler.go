package handlers

import (
	"errors"

	"zando/internal/log"
	"zando/internal/services"
	"zando/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /product/:id?variant=
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	variantID, _ := validate.OptionalID(c.Query("variant"))
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Error(c, "catalog.product.fail", err, map[string]any{"product_id": id})
		}
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	view := catalogView(p, variantID)
	return render(c, "product", fiber.Map{
		"P":          view,
		"IsFavorite": favoriteIDs(c)[p.ID],
	})
}
