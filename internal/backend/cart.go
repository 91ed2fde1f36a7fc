package backend

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"zando/internal/domain"
)

type AddCartItem struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	VariantID int64 `json:"variantId"`
	SizeID    int64 `json:"sizeId"`
	Quantity  int   `json:"quantity"`
}

func (c *Client) Cart(ctx context.Context, token string, userID int64) ([]domain.CartLineItem, error) {
	var out []domain.CartLineItem
	err := c.do(ctx, call{method: fiber.MethodGet, path: idPath("/cart/%d", userID), token: token, needsToken: true}, &out)
	return out, err
}

// AddToCart returns the line as the backend stored it, with its cart item id.
func (c *Client) AddToCart(ctx context.Context, token string, in AddCartItem) (domain.CartLineItem, error) {
	var out domain.CartLineItem
	err := c.do(ctx, call{method: fiber.MethodPost, path: "/cart", token: token, needsToken: true, jsonBody: in}, &out)
	return out, err
}

func (c *Client) RemoveCartItem(ctx context.Context, token string, cartItemID int64) error {
	return c.do(ctx, call{method: fiber.MethodDelete, path: idPath("/cart/item/%d", cartItemID), token: token, needsToken: true}, nil)
}

// ClearCart empties the caller's cart.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, call{method: fiber.MethodDelete, path: "/cart", token: token, needsToken: true}, nil)
}
