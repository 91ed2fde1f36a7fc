package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zando/internal/domain"
	"zando/internal/services"
)

func TestConcurrentResumeSharesOneSession(t *testing.T) {
	m := &mockBackend{}
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})
	m.On("Cart", mock.Anything, "tok", int64(9)).
		Run(func(mock.Arguments) {
			arrived <- struct{}{}
			<-release
		}).
		Return([]domain.CartLineItem{{CartItemID: 1, ProductID: 3, Quantity: 1}}, nil)
	m.On("Favorites", mock.Anything, "tok", int64(9)).Return([]domain.FavoriteEntry{}, nil)
	m.On("Notifications", mock.Anything, "tok", int64(9)).Return([]domain.Notification{}, nil)

	reg := services.NewRegistry(m, nil, 1)
	got := make(chan *services.Session, 2)
	for range 2 {
		go func() {
			s, err := reg.Resume(context.Background(), "sid-1", shopper)
			assert.NoError(t, err)
			got <- s
		}()
	}
	<-arrived
	<-arrived
	close(release)

	first, second := <-got, <-got
	assert.Same(t, first, second)
	assert.Equal(t, 1, reg.Len())

	again, err := reg.Resume(context.Background(), "sid-1", shopper)
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestOpenReplacesSessionOnLogin(t *testing.T) {
	m := &mockBackend{}
	m.On("Cart", mock.Anything, "tok", int64(9)).Return([]domain.CartLineItem{}, nil)
	m.On("Favorites", mock.Anything, "tok", int64(9)).Return([]domain.FavoriteEntry{}, nil)
	m.On("Notifications", mock.Anything, "tok", int64(9)).Return([]domain.Notification{}, nil)

	reg := services.NewRegistry(m, nil, 1)
	first, err := reg.Open(context.Background(), "sid-1", shopper)
	require.NoError(t, err)
	second, err := reg.Open(context.Background(), "sid-1", shopper)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	cur, _ := reg.Get("sid-1")
	assert.Same(t, second, cur)
}

func TestFailedStoreIsReloadedLater(t *testing.T) {
	m := &mockBackend{}
	m.On("Cart", mock.Anything, "tok", int64(9)).Return(nil, errors.New("backend down")).Once()
	m.On("Cart", mock.Anything, "tok", int64(9)).
		Return([]domain.CartLineItem{{CartItemID: 4, ProductID: 1, Quantity: 2}}, nil).Once()
	m.On("Favorites", mock.Anything, "tok", int64(9)).Return([]domain.FavoriteEntry{}, nil).Once()
	m.On("Notifications", mock.Anything, "tok", int64(9)).Return([]domain.Notification{}, nil).Once()

	reg := services.NewRegistry(m, nil, 1)
	sess, err := reg.Open(context.Background(), "sid-1", shopper)
	require.Error(t, err)
	assert.True(t, sess.Stale())
	assert.Empty(t, sess.Cart.Items())

	require.NoError(t, sess.EnsureLoaded(context.Background()))
	assert.False(t, sess.Stale())
	assert.Equal(t, 1, sess.Cart.Count())

	// loaded stores are not fetched again
	require.NoError(t, sess.EnsureLoaded(context.Background()))
	m.AssertNumberOfCalls(t, "Cart", 2)
	m.AssertNumberOfCalls(t, "Favorites", 1)
}

func TestStoreStaysStaleWhileBackendFails(t *testing.T) {
	m := &mockBackend{}
	m.On("Cart", mock.Anything, "tok", int64(9)).Return([]domain.CartLineItem{}, nil)
	m.On("Favorites", mock.Anything, "tok", int64(9)).Return([]domain.FavoriteEntry{}, nil)
	m.On("Notifications", mock.Anything, "tok", int64(9)).Return(nil, errors.New("timeout"))

	reg := services.NewRegistry(m, nil, 1)
	sess, _ := reg.Open(context.Background(), "sid-1", shopper)
	assert.Error(t, sess.EnsureLoaded(context.Background()))
	assert.True(t, sess.Stale())
	m.AssertNumberOfCalls(t, "Notifications", 2)
}
