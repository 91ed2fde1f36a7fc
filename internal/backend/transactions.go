package backend

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"zando/internal/domain"
)

type TransactionLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CreateTransaction struct {
	UserID          int64             `json:"userId"`
	ShippingAddress string            `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	Items           []TransactionLine `json:"items"`
}

func (c *Client) Transactions(ctx context.Context, token string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := c.do(ctx, call{method: fiber.MethodGet, path: "/transactions", token: token, needsToken: true}, &out)
	return out, err
}

func (c *Client) CreateTransaction(ctx context.Context, token string, in CreateTransaction) (domain.Transaction, error) {
	var out domain.Transaction
	err := c.do(ctx, call{method: fiber.MethodPost, path: "/transactions", token: token, needsToken: true, jsonBody: in}, &out)
	return out, err
}

// UpdateTransactionStatus sends the bare status name as the request body,
// which is what the backend's status endpoint reads.
func (c *Client) UpdateTransactionStatus(ctx context.Context, token string, id int64, status domain.OrderStatus) (domain.Transaction, error) {
	var out domain.Transaction
	err := c.do(ctx, call{method: fiber.MethodPut, path: idPath("/transactions/%d/status", id), token: token, needsToken: true,
		rawBody: []byte(status), contentType: fiber.MIMEApplicationJSON}, &out)
	return out, err
}
