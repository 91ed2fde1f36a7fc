package services

import (
	"context"
	"fmt"

	"zando/internal/backend"
	"zando/internal/domain"
)

// Cart is the session's copy of the user's cart.
type Cart struct {
	api      CartAPI
	user     *domain.User
	items    Value[[]domain.CartLineItem]
	inflight InFlight
}

// NewCart returns an empty cart for user; a nil user gets a cart that
// rejects every mutation.
func NewCart(api CartAPI, user *domain.User) *Cart {
	return &Cart{api: api, user: user}
}

func (c *Cart) Load(ctx context.Context) error {
	if token(c.user) == "" {
		return ErrUnauthenticated
	}
	items, err := c.api.Cart(ctx, c.user.Token, c.user.ID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	c.items.Set(items)
	return nil
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []domain.CartLineItem {
	items := c.items.Get()
	return append([]domain.CartLineItem(nil), items...)
}

// Count is the number of lines in the cart, resolvable or not, as shown on
// the header badge.
func (c *Cart) Count() int {
	return len(c.items.Get())
}

// Add puts item in the cart. A line with the same product, variant and size
// gets its quantity increased instead of a second line. The local change is
// undone if the backend refuses it.
func (c *Cart) Add(ctx context.Context, item domain.CartLineItem) error {
	if token(c.user) == "" {
		return ErrUnauthenticated
	}
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	done, err := c.inflight.Begin(fmt.Sprintf("add:%d:%d:%d", item.ProductID, item.VariantID, item.SizeID))
	if err != nil {
		return err
	}
	defer done()

	var stored domain.CartLineItem
	err = Optimistic(ctx, &c.items,
		func(cur []domain.CartLineItem) ([]domain.CartLineItem, error) {
			next := append([]domain.CartLineItem(nil), cur...)
			for i := range next {
				if next[i].SameLine(item) {
					next[i].Quantity += item.Quantity
					return next, nil
				}
			}
			line := item
			line.CartItemID = 0
			return append(next, line), nil
		},
		func(ctx context.Context) error {
			var err error
			stored, err = c.api.AddToCart(ctx, c.user.Token, backend.AddCartItem{
				UserID:    c.user.ID,
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				SizeID:    item.SizeID,
				Quantity:  item.Quantity,
			})
			return err
		})
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	c.reconcile(item, stored)
	return nil
}

// reconcile takes the backend's id and quantity for the line just added.
func (c *Cart) reconcile(item, stored domain.CartLineItem) {
	if stored.CartItemID == 0 {
		return
	}
	c.items.Update(func(cur []domain.CartLineItem) []domain.CartLineItem {
		next := append([]domain.CartLineItem(nil), cur...)
		for i := range next {
			if next[i].SameLine(item) {
				next[i].CartItemID = stored.CartItemID
				if stored.Quantity > 0 {
					next[i].Quantity = stored.Quantity
				}
				break
			}
		}
		return next
	})
}

func (c *Cart) Remove(ctx context.Context, cartItemID int64) error {
	if token(c.user) == "" {
		return ErrUnauthenticated
	}
	done, err := c.inflight.Begin(fmt.Sprintf("remove:%d", cartItemID))
	if err != nil {
		return err
	}
	defer done()

	err = Optimistic(ctx, &c.items,
		func(cur []domain.CartLineItem) ([]domain.CartLineItem, error) {
			next := make([]domain.CartLineItem, 0, len(cur))
			for _, it := range cur {
				if it.CartItemID != cartItemID {
					next = append(next, it)
				}
			}
			if len(next) == len(cur) {
				return nil, ErrNotFound
			}
			return next, nil
		},
		func(ctx context.Context) error {
			return c.api.RemoveCartItem(ctx, c.user.Token, cartItemID)
		})
	if err != nil {
		return fmt.Errorf("remove cart item %d: %w", cartItemID, err)
	}
	return nil
}

// Clear empties the cart after an order was placed.
func (c *Cart) Clear(ctx context.Context) error {
	if token(c.user) == "" {
		return ErrUnauthenticated
	}
	done, err := c.inflight.Begin("clear")
	if err != nil {
		return err
	}
	defer done()

	err = Optimistic(ctx, &c.items,
		func([]domain.CartLineItem) ([]domain.CartLineItem, error) { return nil, nil },
		func(ctx context.Context) error { return c.api.ClearCart(ctx, c.user.Token) })
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
