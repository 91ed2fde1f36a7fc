package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"zando/internal/catalog"
	"zando/internal/domain"
	"zando/internal/services"
	"zando/internal/validate"
)

type InventoryHandler struct {
	Catalog *services.CatalogService
}

func catalogView(p domain.Product, variantID int64) catalog.View {
	return catalog.Normalize(p, variantID)
}

// GET /api/v1/availability?productId=&variantId=
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing productId",
		})
	}
	variantID, ok := validate.OptionalID(c.Query("variantId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid variantId",
		})
	}

	p, err := h.Catalog.GetProduct(c.UserContext(), productID)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "product not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "catalog unavailable",
		})
	}
	v := catalog.Normalize(p, variantID)
	return c.JSON(fiber.Map{
		"productId": p.ID,
		"variantId": v.Selected.VariantID,
		"color":     v.Selected.Color,
		"status":    v.Stock.Status,
		"qty":       v.Stock.Qty,
	})
}
