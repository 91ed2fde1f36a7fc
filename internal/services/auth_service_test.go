package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zando/internal/backend"
	"zando/internal/domain"
	"zando/internal/repos"
	"zando/internal/services"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "9", "exp": exp.Unix()}).
		SignedString([]byte("backend-key"))
	require.NoError(t, err)
	return tok
}

func newAuth(t *testing.T, m *mockBackend) *services.AuthService {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	seal, err := repos.NewSealer("test-secret")
	require.NoError(t, err)
	m.On("Cart", mock.Anything, mock.Anything, mock.Anything).Return([]domain.CartLineItem{{CartItemID: 1, ProductID: 3, Quantity: 1}}, nil).Maybe()
	m.On("Favorites", mock.Anything, mock.Anything, mock.Anything).Return([]domain.FavoriteEntry{}, nil).Maybe()
	m.On("Notifications", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Notification{}, nil).Maybe()
	return services.NewAuthService(m, repos.NewUserRepo(db, seal), services.NewRegistry(m, nil, 1), 0)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	exp := now.Add(90 * time.Minute)
	assert.Equal(t, exp.Unix(), services.TokenExpiry(signed(t, exp), now, time.Hour).Unix())
	assert.Equal(t, now.Add(5*time.Hour), services.TokenExpiry("opaque", now, services.DefaultSessionTTL))
}

func TestLoginOpensSessionAndLogoutEndsIt(t *testing.T) {
	m := &mockBackend{}
	a := newAuth(t, m)
	tok := signed(t, time.Now().Add(time.Hour))
	m.On("Login", mock.Anything, "dara@example.com", "secret1").
		Return(domain.User{ID: 9, FirstName: "Dara", LastName: "Sok", Role: domain.RoleUser, Token: tok}, nil)

	sess, err := a.Login(context.Background(), "sid-1", " dara@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Dara Sok", sess.User.Name)
	assert.Equal(t, 1, sess.Cart.Count())
	assert.Nil(t, sess.Board)

	cur, err := a.Current(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Same(t, sess, cur)

	require.NoError(t, a.Logout("sid-1"))
	cur, err = a.Current(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestBadCredentials(t *testing.T) {
	m := &mockBackend{}
	a := newAuth(t, m)
	m.On("Login", mock.Anything, "x@example.com", "nope").
		Return(domain.User{}, &backend.APIError{Status: 401, Message: "Bad credentials"})

	_, err := a.Login(context.Background(), "sid", "x@example.com", "nope")
	assert.ErrorIs(t, err, services.ErrBadCreds)
}

func TestSessionSurvivesRestart(t *testing.T) {
	m := &mockBackend{}
	a := newAuth(t, m)
	m.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.User{ID: 1, Name: "Admin", Role: domain.RoleAdmin, Token: signed(t, time.Now().Add(time.Hour))}, nil)
	_, err := a.Login(context.Background(), "sid-a", "admin@example.com", "secret1")
	require.NoError(t, err)

	a.Sessions = services.NewRegistry(m, nil, 1)
	sess, err := a.Current(context.Background(), "sid-a")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.True(t, sess.User.IsAdmin())
	assert.NotNil(t, sess.Board)
}

func TestExpiredSessionIsAnonymous(t *testing.T) {
	m := &mockBackend{}
	a := newAuth(t, m)
	m.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.User{ID: 9, Token: signed(t, time.Now().Add(time.Minute))}, nil)
	_, err := a.Login(context.Background(), "sid-e", "e@example.com", "secret1")
	require.NoError(t, err)

	a.Now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	sess, err := a.Current(context.Background(), "sid-e")
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Zero(t, a.Sessions.Len())
}
