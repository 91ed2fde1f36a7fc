package backend

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"zando/internal/domain"
)

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) error {
	return c.do(ctx, call{method: fiber.MethodPost, path: "/auths/register", jsonBody: in}, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	body := map[string]string{"email": email, "otp": otp}
	return c.do(ctx, call{method: fiber.MethodPost, path: "/auths/verify-otp", jsonBody: body}, nil)
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, call{method: fiber.MethodPost, path: "/auths/resend-otp", jsonBody: body}, nil)
}

// Login exchanges credentials for the user record and its bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (domain.User, error) {
	var u domain.User
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, call{method: fiber.MethodPost, path: "/auths/login", jsonBody: body}, &u)
	return u, err
}

// GoogleLogin exchanges a Google ID token for a backend session.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (domain.User, error) {
	var u domain.User
	body := map[string]string{"idToken": idToken}
	err := c.do(ctx, call{method: fiber.MethodPost, path: "/auths/google", jsonBody: body}, &u)
	return u, err
}

// Customers lists every registered account (admin only).
func (c *Client) Customers(ctx context.Context, token string) ([]domain.Customer, error) {
	var out []domain.Customer
	err := c.do(ctx, call{method: fiber.MethodGet, path: "/auths", token: token, needsToken: true}, &out)
	return out, err
}
