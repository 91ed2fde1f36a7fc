package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"zando/internal/domain"
)

func (c *Client) Favorites(ctx context.Context, token string, userID int64) ([]domain.FavoriteEntry, error) {
	var out []domain.FavoriteEntry
	err := c.do(ctx, call{method: fiber.MethodGet, path: idPath("/favorites/%d", userID), token: token, needsToken: true}, &out)
	return out, err
}

func (c *Client) AddFavorite(ctx context.Context, token string, userID, productID int64) (domain.FavoriteEntry, error) {
	out := domain.FavoriteEntry{UserID: userID, ProductID: productID}
	body := domain.FavoriteEntry{UserID: userID, ProductID: productID}
	err := c.do(ctx, call{method: fiber.MethodPost, path: "/favorites", token: token, needsToken: true, jsonBody: body}, &out)
	return out, err
}

func (c *Client) RemoveFavorite(ctx context.Context, token string, userID, productID int64) error {
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	return c.do(ctx, call{method: fiber.MethodDelete, path: idPath("/favorites/%d", productID), query: q,
		token: token, needsToken: true}, nil)
}
