package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"zando/internal/domain"
)

func (c *Client) Notifications(ctx context.Context, token string, userID int64) ([]domain.Notification, error) {
	var out []domain.Notification
	err := c.do(ctx, call{method: fiber.MethodGet, path: idPath("/notifications/%d", userID), token: token, needsToken: true}, &out)
	return out, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, token string, id, userID int64) error {
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	return c.do(ctx, call{method: fiber.MethodPut, path: idPath("/notifications/%d/read", id), query: q,
		token: token, needsToken: true}, nil)
}
