package handlers

import (
	"errors"

	"zando/internal/catalog"
	applog "zando/internal/log"
	"zando/internal/services"
	"zando/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type WishlistHandler struct {
	Catalog *services.CatalogService
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	sess := currentSession(c)
	entries := sess.Favorites.Entries()
	var items []catalog.View
	if len(entries) > 0 {
		idx, err := h.Catalog.ProductIndex(c.UserContext())
		if err != nil {
			applog.Error(c, "wishlist.list.fail", err, nil)
			return notFound(c, fiber.StatusBadGateway, "Could not load wishlist")
		}
		for _, e := range entries {
			// products removed from the catalog drop out of the list
			if p, ok := idx[e.ProductID]; ok {
				items = append(items, catalogView(p, 0))
			}
		}
	}
	return render(c, "favorites", fiber.Map{"Items": items})
}

// POST /favorites
func (h *WishlistHandler) Save(c *fiber.Ctx) error {
	sess := currentSession(c)
	if sess == nil {
		return redirectWith(c, "/login", "Please log in to save favorites.")
	}
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	back := backTo(c, "/favorites")
	switch err := sess.Favorites.Add(c.UserContext(), pid); {
	case errors.Is(err, services.ErrAlreadyFavorite):
		return redirectWith(c, back, "Already in your wishlist.")
	case errors.Is(err, services.ErrInFlight):
		return c.Redirect(back)
	case err != nil:
		applog.Error(c, "wishlist.save.fail", err, map[string]any{"product": pid})
		return redirectWith(c, back, "Could not save item.")
	}
	applog.Audit(c, "wishlist.save", map[string]any{"product": pid})
	return c.Redirect(back)
}

// POST /favorites/delete
func (h *WishlistHandler) Unsave(c *fiber.Ctx) error {
	sess := currentSession(c)
	if sess == nil {
		return redirectWith(c, "/login", "Please log in to save favorites.")
	}
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	back := backTo(c, "/favorites")
	if err := sess.Favorites.Remove(c.UserContext(), pid); err != nil && !errors.Is(err, services.ErrInFlight) {
		applog.Error(c, "wishlist.unsave.fail", err, map[string]any{"product": pid})
		return redirectWith(c, back, "Could not remove item.")
	}
	applog.Audit(c, "wishlist.unsave", map[string]any{"product": pid})
	return c.Redirect(back)
}
