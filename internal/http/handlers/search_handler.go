package handlers

import (
	"strings"

	"zando/internal/log"
	"zando/internal/services"
	"zando/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	if strings.TrimSpace(c.Query("q")) == "" {
		return render(c, "search", fiber.Map{"Q": ""})
	}
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q"})
		return c.Status(fiber.StatusBadRequest).Render("search", fiber.Map{"Q": "", "Err": "Search text contains invalid characters"})
	}
	products, err := h.Catalog.Search(c.UserContext(), q)
	if err != nil {
		log.Error(c, "catalog.search.fail", err, map[string]any{"q": q})
		return notFound(c, fiber.StatusBadGateway, "Search is unavailable right now")
	}
	return render(c, "search", fiber.Map{
		"Q":         q,
		"Products":  cards(products),
		"Favorites": favoriteIDs(c),
	})
}
