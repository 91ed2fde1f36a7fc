package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zando/internal/backend"
	"zando/internal/catalog"
	"zando/internal/domain"
	applog "zando/internal/log"
)

// CatalogService serves catalog reads through a cache and runs the admin
// product mutations, which invalidate it.
type CatalogService struct {
	API   CatalogAPI
	Cache catalog.Cache
	TTL   time.Duration
}

func NewCatalogService(api CatalogAPI, cache catalog.Cache, ttl time.Duration) *CatalogService {
	if cache == nil {
		cache = catalog.NewMemoryCache()
	}
	return &CatalogService{API: api, Cache: cache, TTL: ttl}
}

// cached reads key from the cache or fills it with fetch. Cache failures
// are logged and fall through to the backend.
func cached[T any](ctx context.Context, s *CatalogService, key string, fetch func(context.Context) (T, error)) (T, error) {
	var v T
	if s.TTL > 0 {
		ok, err := s.Cache.Get(ctx, key, &v)
		if err == nil && ok {
			return v, nil
		}
		if err != nil {
			applog.Logger().Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
	}
	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if s.TTL > 0 {
		if err := s.Cache.Set(ctx, key, v, s.TTL); err != nil {
			applog.Logger().Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
		}
	}
	return v, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return cached(ctx, s, "products", s.API.Products)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	p, err := cached(ctx, s, catalog.Key("product", strconv.FormatInt(id, 10)), func(ctx context.Context) (domain.Product, error) {
		return s.API.Product(ctx, id)
	})
	if backend.StatusCode(err) == http.StatusNotFound || (err == nil && p.ID == 0) {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	return cached(ctx, s, catalog.Key("category", strconv.FormatInt(categoryID, 10)), func(ctx context.Context) ([]domain.Product, error) {
		return s.API.ProductsByCategory(ctx, categoryID)
	})
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return cached(ctx, s, "categories", s.API.Categories)
}

// ProductIndex maps every listed product by id, for joining cart lines.
func (s *CatalogService) ProductIndex(ctx context.Context) (map[int64]domain.Product, error) {
	list, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[int64]domain.Product, len(list))
	for _, p := range list {
		idx[p.ID] = p
	}
	return idx, nil
}

// Search filters the product list by a case-insensitive name or
// description match.
func (s *CatalogService) Search(ctx context.Context, q string) ([]domain.Product, error) {
	list, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return list, nil
	}
	var out []domain.Product
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, admin *domain.User, f backend.ProductForm) (domain.Product, error) {
	if err := requireAdmin(admin); err != nil {
		return domain.Product{}, err
	}
	p, err := s.API.CreateProduct(ctx, admin.Token, f)
	if err != nil {
		return p, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, admin *domain.User, id int64, f backend.ProductForm) (domain.Product, error) {
	if err := requireAdmin(admin); err != nil {
		return domain.Product{}, err
	}
	p, err := s.API.UpdateProduct(ctx, admin.Token, id, f)
	if err != nil {
		return p, fmt.Errorf("update product %d: %w", id, err)
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, admin *domain.User, id int64) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if err := s.API.DeleteProduct(ctx, admin.Token, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		applog.Logger().Error().Err(err).Msg("catalog cache not invalidated")
	}
}

func requireAdmin(u *domain.User) error {
	if token(u) == "" {
		return ErrUnauthenticated
	}
	if !u.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
