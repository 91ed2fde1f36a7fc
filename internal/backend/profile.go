package backend

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"zando/internal/domain"
)

func (c *Client) Profile(ctx context.Context, token string, userID int64) (domain.Profile, error) {
	var out domain.Profile
	err := c.do(ctx, call{method: fiber.MethodGet, path: idPath("/profile/%d", userID), token: token, needsToken: true}, &out)
	return out, err
}

// Profiles lists every user profile (admin only).
func (c *Client) Profiles(ctx context.Context, token string) ([]domain.Profile, error) {
	var out []domain.Profile
	err := c.do(ctx, call{method: fiber.MethodGet, path: "/profile", token: token, needsToken: true}, &out)
	return out, err
}

type ProfileForm struct {
	UserID      int64
	FirstName   string
	LastName    string
	PhoneNumber string
	Birthday    string // yyyy-mm-dd, optional
	Gender      string
	Image       *Upload
}

func (c *Client) UpdateProfile(ctx context.Context, token string, f ProfileForm) (domain.Profile, error) {
	var out domain.Profile
	form := [][2]string{
		{"userId", strconv.FormatInt(f.UserID, 10)},
		{"firstName", f.FirstName},
		{"lastName", f.LastName},
		{"userName", strings.TrimSpace(f.FirstName + " " + f.LastName)},
		{"phoneNumber", f.PhoneNumber},
		{"gender", f.Gender},
	}
	if f.Birthday != "" {
		form = append(form, [2]string{"birthday", f.Birthday})
	}
	var files []Upload
	if f.Image != nil {
		img := *f.Image
		img.Field = "profileImage"
		files = append(files, img)
	}
	err := c.do(ctx, call{method: fiber.MethodPut, path: "/profile/edit", token: token, needsToken: true,
		form: form, files: files}, &out)
	return out, err
}

func (c *Client) DashboardStats(ctx context.Context, token string) (domain.DashboardStats, error) {
	var out domain.DashboardStats
	err := c.do(ctx, call{method: fiber.MethodGet, path: "/dashboard/stats", token: token, needsToken: true}, &out)
	return out, err
}
