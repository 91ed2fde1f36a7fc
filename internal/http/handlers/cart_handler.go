package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"zando/internal/domain"
	applog "zando/internal/log"
	"zando/internal/services"
	"zando/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Catalog *services.CatalogService
	Fee     float64
}

// backTo returns the local page to go back to: the "back" form field or the
// Referer path, else fallback.
func backTo(c *fiber.Ctx, fallback string) string {
	back := c.FormValue("back")
	if back == "" {
		if ref, err := url.Parse(c.Get(fiber.HeaderReferer)); err == nil && ref.Path != "" {
			back = ref.Path
			if ref.RawQuery != "" {
				back += "?" + ref.RawQuery
			}
		}
	}
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") || strings.Contains(back, `\`) {
		return fallback
	}
	return back
}

// cartLines joins the session cart with the catalog.
func cartLines(c *fiber.Ctx, cat *services.CatalogService, sess *services.Session) ([]services.Line, error) {
	items := sess.Cart.Items()
	if len(items) == 0 {
		return nil, nil
	}
	idx, err := cat.ProductIndex(c.UserContext())
	if err != nil {
		return nil, err
	}
	return services.Join(items, idx), nil
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sess := currentSession(c)
	lines, err := cartLines(c, h.Catalog, sess)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load your cart")
	}
	return render(c, "cart", fiber.Map{
		"Lines":  lines,
		"Totals": services.Summarize(lines, h.Fee),
	})
}

// POST /cart/add
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sess := currentSession(c)
	if sess == nil {
		return redirectWith(c, "/login", "Please log in to add items to your cart.")
	}
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	variantID, okV := validate.OptionalID(c.FormValue("variantId"))
	sizeID, okS := validate.OptionalID(c.FormValue("sizeId"))
	if !okV || !okS {
		applog.Security(c, "validation.fail", map[string]any{"field": "variant"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid variant or size")
	}
	back := backTo(c, fmt.Sprintf("/product/%d", productID))

	p, err := h.Catalog.GetProduct(c.UserContext(), productID)
	if errors.Is(err, services.ErrNotFound) {
		return redirectWith(c, "/", "This item is no longer available.")
	}
	if err != nil {
		applog.Error(c, "cart.add.product", err, map[string]any{"product_id": productID})
		return redirectWith(c, back, "Could not add to cart. Please try again.")
	}
	view := catalogView(p, variantID)
	if !view.Available || view.Stock.Status == "OUT_OF_STOCK" {
		return redirectWith(c, back, "This item is out of stock.")
	}
	if len(view.Sizes) > 0 && sizeID == 0 {
		return redirectWith(c, back, "Please select a size.")
	}

	item := domain.CartLineItem{
		ProductID: productID,
		VariantID: view.Selected.VariantID,
		SizeID:    sizeID,
		Quantity:  validate.Qty(c.FormValue("quantity")),
	}
	switch err := sess.Cart.Add(c.UserContext(), item); {
	case errors.Is(err, services.ErrInFlight):
		return redirectWith(c, back, "Still adding your last item.")
	case err != nil:
		applog.Error(c, "cart.add.fail", err, map[string]any{"product_id": productID})
		return redirectWith(c, back, "Could not add to cart. Please try again.")
	}
	applog.Audit(c, "cart.add", map[string]any{"product_id": productID, "variant_id": item.VariantID, "size_id": sizeID, "qty": item.Quantity})
	return redirectWith(c, back, "Added to cart.")
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sess := currentSession(c)
	id, ok := validate.ID(c.FormValue("cartItemId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing cartItemId")
	}
	switch err := sess.Cart.Remove(c.UserContext(), id); {
	case errors.Is(err, services.ErrNotFound):
		return c.Redirect("/cart")
	case errors.Is(err, services.ErrInFlight):
		return redirectWith(c, "/cart", "That item is already being removed.")
	case err != nil:
		applog.Error(c, "cart.remove.fail", err, map[string]any{"cart_item_id": id})
		return redirectWith(c, "/cart", "Could not remove the item. Please try again.")
	}
	applog.Audit(c, "cart.remove", map[string]any{"cart_item_id": id})
	return c.Redirect("/cart")
}
