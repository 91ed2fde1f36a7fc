package backend

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"zando/internal/domain"
)

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := c.do(ctx, call{method: fiber.MethodGet, path: "/products"}, &out)
	return out, err
}

func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, call{method: fiber.MethodGet, path: idPath("/products/%d", id)}, &out)
	return out, err
}

func (c *Client) ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	var out []domain.Product
	err := c.do(ctx, call{method: fiber.MethodGet, path: idPath("/products/category/%d", categoryID)}, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := c.do(ctx, call{method: fiber.MethodGet, path: "/categories"}, &out)
	return out, err
}

type VariantForm struct {
	Color      string   `json:"color"`
	Quantity   int      `json:"quantity"`
	Sizes      []string `json:"sizes"`
	ImageCount int      `json:"imageCount"`
}

// ProductForm is the multipart body of the admin create/update endpoints.
// Images are sent in variant order; ImageCount tells the backend how many
// belong to each variant.
type ProductForm struct {
	Name            string
	Description     string
	BasePrice       float64
	DiscountPercent float64
	IsAvailable     bool
	Variants        []VariantForm
	CategoryIDs     []int64
	Images          []Upload
}

func (f ProductForm) fields() ([][2]string, error) {
	variants := f.Variants
	if variants == nil {
		variants = []VariantForm{}
	}
	vj, err := json.Marshal(variants)
	if err != nil {
		return nil, err
	}
	out := [][2]string{
		{"name", f.Name},
		{"description", f.Description},
		{"basePrice", strconv.FormatFloat(f.BasePrice, 'f', -1, 64)},
		{"discountPercent", strconv.FormatFloat(f.DiscountPercent, 'f', -1, 64)},
		{"isAvailable", strconv.FormatBool(f.IsAvailable)},
		{"variants", string(vj)},
	}
	for _, id := range f.CategoryIDs {
		out = append(out, [2]string{"categoryIds", strconv.FormatInt(id, 10)})
	}
	return out, nil
}

func (f ProductForm) files() []Upload {
	files := make([]Upload, 0, len(f.Images))
	for _, img := range f.Images {
		img.Field = "images"
		files = append(files, img)
	}
	return files
}

func (c *Client) CreateProduct(ctx context.Context, token string, f ProductForm) (domain.Product, error) {
	var out domain.Product
	form, err := f.fields()
	if err != nil {
		return out, err
	}
	err = c.do(ctx, call{method: fiber.MethodPost, path: "/products/admin", token: token, needsToken: true,
		form: form, files: f.files()}, &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, f ProductForm) (domain.Product, error) {
	var out domain.Product
	form, err := f.fields()
	if err != nil {
		return out, err
	}
	err = c.do(ctx, call{method: fiber.MethodPut, path: idPath("/products/admin/%d", id), token: token, needsToken: true,
		form: form, files: f.files()}, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	return c.do(ctx, call{method: fiber.MethodDelete, path: idPath("/products/admin/%d", id), token: token, needsToken: true}, nil)
}
