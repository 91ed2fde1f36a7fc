package handlers

import (
	"zando/internal/catalog"
	"zando/internal/domain"
	"zando/internal/log"
	"zando/internal/services"
	"zando/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// cards shapes products for the product grid.
func cards(products []domain.Product) []catalog.View {
	out := make([]catalog.View, 0, len(products))
	for _, p := range products {
		out = append(out, catalog.Normalize(p, 0))
	}
	return out
}

func favoriteIDs(c *fiber.Ctx) map[int64]bool {
	if sess := currentSession(c); sess != nil {
		return sess.Favorites.IDs()
	}
	return map[int64]bool{}
}

func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		log.Error(c, "catalog.categories.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load the catalog")
	}
	products, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		log.Error(c, "catalog.products.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load the catalog")
	}
	return render(c, "home", fiber.Map{
		"Categories": cats,
		"Products":   cards(products),
		"Favorites":  favoriteIDs(c),
	})
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	catID, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return notFound(c, fiber.StatusNotFound, "Category not found")
	}
	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		log.Error(c, "catalog.categories.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load the catalog")
	}
	var current *domain.Category
	for i := range cats {
		if cats[i].ID == catID {
			current = &cats[i]
			break
		}
	}
	if current == nil {
		return notFound(c, fiber.StatusNotFound, "Category not found")
	}
	products, err := h.Catalog.ListProductsByCategory(ctx, catID)
	if err != nil {
		log.Error(c, "catalog.category.fail", err, map[string]any{"category_id": catID})
		return notFound(c, fiber.StatusBadGateway, "Could not load the catalog")
	}
	return render(c, "category", fiber.Map{
		"Categories": cats,
		"Category":   current,
		"Products":   cards(products),
		"Favorites":  favoriteIDs(c),
	})
}
