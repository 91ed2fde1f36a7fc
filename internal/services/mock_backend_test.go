package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"zando/internal/backend"
	"zando/internal/domain"
	"zando/internal/events"
)

type mockBackend struct{ mock.Mock }

func (m *mockBackend) Cart(ctx context.Context, token string, userID int64) ([]domain.CartLineItem, error) {
	args := m.Called(ctx, token, userID)
	items, _ := args.Get(0).([]domain.CartLineItem)
	return items, args.Error(1)
}

func (m *mockBackend) AddToCart(ctx context.Context, token string, in backend.AddCartItem) (domain.CartLineItem, error) {
	args := m.Called(ctx, token, in)
	return args.Get(0).(domain.CartLineItem), args.Error(1)
}

func (m *mockBackend) RemoveCartItem(ctx context.Context, token string, cartItemID int64) error {
	return m.Called(ctx, token, cartItemID).Error(0)
}

func (m *mockBackend) ClearCart(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockBackend) Favorites(ctx context.Context, token string, userID int64) ([]domain.FavoriteEntry, error) {
	args := m.Called(ctx, token, userID)
	list, _ := args.Get(0).([]domain.FavoriteEntry)
	return list, args.Error(1)
}

func (m *mockBackend) AddFavorite(ctx context.Context, token string, userID, productID int64) (domain.FavoriteEntry, error) {
	args := m.Called(ctx, token, userID, productID)
	return args.Get(0).(domain.FavoriteEntry), args.Error(1)
}

func (m *mockBackend) RemoveFavorite(ctx context.Context, token string, userID, productID int64) error {
	return m.Called(ctx, token, userID, productID).Error(0)
}

func (m *mockBackend) Notifications(ctx context.Context, token string, userID int64) ([]domain.Notification, error) {
	args := m.Called(ctx, token, userID)
	list, _ := args.Get(0).([]domain.Notification)
	return list, args.Error(1)
}

func (m *mockBackend) MarkNotificationRead(ctx context.Context, token string, id, userID int64) error {
	return m.Called(ctx, token, id, userID).Error(0)
}

func (m *mockBackend) Transactions(ctx context.Context, token string) ([]domain.Transaction, error) {
	args := m.Called(ctx, token)
	list, _ := args.Get(0).([]domain.Transaction)
	return list, args.Error(1)
}

func (m *mockBackend) CreateTransaction(ctx context.Context, token string, in backend.CreateTransaction) (domain.Transaction, error) {
	args := m.Called(ctx, token, in)
	return args.Get(0).(domain.Transaction), args.Error(1)
}

func (m *mockBackend) UpdateTransactionStatus(ctx context.Context, token string, id int64, status domain.OrderStatus) (domain.Transaction, error) {
	args := m.Called(ctx, token, id, status)
	return args.Get(0).(domain.Transaction), args.Error(1)
}

func (m *mockBackend) Products(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.Product)
	return list, args.Error(1)
}

func (m *mockBackend) Product(ctx context.Context, id int64) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *mockBackend) ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	args := m.Called(ctx, categoryID)
	list, _ := args.Get(0).([]domain.Product)
	return list, args.Error(1)
}

func (m *mockBackend) Categories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.Category)
	return list, args.Error(1)
}

func (m *mockBackend) CreateProduct(ctx context.Context, token string, f backend.ProductForm) (domain.Product, error) {
	args := m.Called(ctx, token, f)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *mockBackend) UpdateProduct(ctx context.Context, token string, id int64, f backend.ProductForm) (domain.Product, error) {
	args := m.Called(ctx, token, id, f)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *mockBackend) DeleteProduct(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *mockBackend) Login(ctx context.Context, email, password string) (domain.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockBackend) GoogleLogin(ctx context.Context, idToken string) (domain.User, error) {
	args := m.Called(ctx, idToken)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockBackend) Register(ctx context.Context, in backend.RegisterRequest) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockBackend) VerifyOTP(ctx context.Context, email, otp string) error {
	return m.Called(ctx, email, otp).Error(0)
}

func (m *mockBackend) ResendOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockBackend) Profile(ctx context.Context, token string, userID int64) (domain.Profile, error) {
	args := m.Called(ctx, token, userID)
	return args.Get(0).(domain.Profile), args.Error(1)
}

func (m *mockBackend) Profiles(ctx context.Context, token string) ([]domain.Profile, error) {
	args := m.Called(ctx, token)
	list, _ := args.Get(0).([]domain.Profile)
	return list, args.Error(1)
}

func (m *mockBackend) UpdateProfile(ctx context.Context, token string, f backend.ProfileForm) (domain.Profile, error) {
	args := m.Called(ctx, token, f)
	return args.Get(0).(domain.Profile), args.Error(1)
}

func (m *mockBackend) Customers(ctx context.Context, token string) ([]domain.Customer, error) {
	args := m.Called(ctx, token)
	list, _ := args.Get(0).([]domain.Customer)
	return list, args.Error(1)
}

func (m *mockBackend) DashboardStats(ctx context.Context, token string) (domain.DashboardStats, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.DashboardStats), args.Error(1)
}

// recorder collects published events.
type recorder struct {
	mock.Mock
}

func (r *recorder) Publish(ctx context.Context, e events.Event) error {
	return r.Called(e.Type, e.TransactionID).Error(0)
}

func (r *recorder) Close() error { return nil }
