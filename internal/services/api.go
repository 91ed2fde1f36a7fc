package services

import (
	"context"
	"errors"

	"zando/internal/backend"
	"zando/internal/domain"
)

var (
	// ErrUnauthenticated is the backend's sentinel so callers can test either.
	ErrUnauthenticated = backend.ErrUnauthenticated
	ErrNotFound        = errors.New("not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type CartAPI interface {
	Cart(ctx context.Context, token string, userID int64) ([]domain.CartLineItem, error)
	AddToCart(ctx context.Context, token string, in backend.AddCartItem) (domain.CartLineItem, error)
	RemoveCartItem(ctx context.Context, token string, cartItemID int64) error
	ClearCart(ctx context.Context, token string) error
}

type FavoritesAPI interface {
	Favorites(ctx context.Context, token string, userID int64) ([]domain.FavoriteEntry, error)
	AddFavorite(ctx context.Context, token string, userID, productID int64) (domain.FavoriteEntry, error)
	RemoveFavorite(ctx context.Context, token string, userID, productID int64) error
}

type NotificationsAPI interface {
	Notifications(ctx context.Context, token string, userID int64) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, token string, id, userID int64) error
}

type TransactionsAPI interface {
	Transactions(ctx context.Context, token string) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, token string, in backend.CreateTransaction) (domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, token string, id int64, status domain.OrderStatus) (domain.Transaction, error)
}

type CatalogAPI interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (domain.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	CreateProduct(ctx context.Context, token string, f backend.ProductForm) (domain.Product, error)
	UpdateProduct(ctx context.Context, token string, id int64, f backend.ProductForm) (domain.Product, error)
	DeleteProduct(ctx context.Context, token string, id int64) error
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (domain.User, error)
	GoogleLogin(ctx context.Context, idToken string) (domain.User, error)
	Register(ctx context.Context, in backend.RegisterRequest) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResendOTP(ctx context.Context, email string) error
}

type AccountAPI interface {
	Profile(ctx context.Context, token string, userID int64) (domain.Profile, error)
	Profiles(ctx context.Context, token string) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, token string, f backend.ProfileForm) (domain.Profile, error)
	Customers(ctx context.Context, token string) ([]domain.Customer, error)
	DashboardStats(ctx context.Context, token string) (domain.DashboardStats, error)
}

// Backend is everything the storefront asks of the REST API. *backend.Client
// implements it.
type Backend interface {
	CartAPI
	FavoritesAPI
	NotificationsAPI
	TransactionsAPI
	CatalogAPI
	AuthAPI
	AccountAPI
}

var _ Backend = (*backend.Client)(nil)

func token(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.Token
}
