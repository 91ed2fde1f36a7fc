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

func TestAddFavoriteIsIdempotent(t *testing.T) {
	m := &mockBackend{}
	m.On("AddFavorite", mock.Anything, "tok", int64(9), int64(4)).
		Return(domain.FavoriteEntry{ID: 70, ProductID: 4, UserID: 9}, nil).Once()

	f := services.NewFavorites(m, shopper)
	require.NoError(t, f.Add(context.Background(), 4))
	err := f.Add(context.Background(), 4)
	assert.ErrorIs(t, err, services.ErrAlreadyFavorite)

	assert.Len(t, f.Entries(), 1)
	assert.Equal(t, int64(70), f.Entries()[0].ID)
	assert.True(t, f.IsFavorite(4))
	m.AssertNumberOfCalls(t, "AddFavorite", 1)
}

func TestAddFavoriteFailureReverts(t *testing.T) {
	m := &mockBackend{}
	m.On("AddFavorite", mock.Anything, "tok", int64(9), int64(4)).
		Return(domain.FavoriteEntry{}, errors.New("down"))

	f := services.NewFavorites(m, shopper)
	require.Error(t, f.Add(context.Background(), 4))
	assert.False(t, f.IsFavorite(4))
}

func TestRemoveFavoriteFailureReverts(t *testing.T) {
	m := &mockBackend{}
	m.On("Favorites", mock.Anything, "tok", int64(9)).
		Return([]domain.FavoriteEntry{{ID: 1, ProductID: 4, UserID: 9}}, nil)
	m.On("RemoveFavorite", mock.Anything, "tok", int64(9), int64(4)).Return(errors.New("down"))

	f := services.NewFavorites(m, shopper)
	require.NoError(t, f.Load(context.Background()))
	require.Error(t, f.Remove(context.Background(), 4))
	assert.True(t, f.IsFavorite(4))
}

func TestToggleFavorite(t *testing.T) {
	m := &mockBackend{}
	m.On("AddFavorite", mock.Anything, "tok", int64(9), int64(4)).Return(domain.FavoriteEntry{ProductID: 4}, nil)
	m.On("RemoveFavorite", mock.Anything, "tok", int64(9), int64(4)).Return(nil)

	f := services.NewFavorites(m, shopper)
	added, err := f.Toggle(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.Toggle(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, f.IDs())
}

func TestFavoritesNeedUser(t *testing.T) {
	m := &mockBackend{}
	f := services.NewFavorites(m, &domain.User{ID: 1})
	assert.ErrorIs(t, f.Add(context.Background(), 4), services.ErrUnauthenticated)
	m.AssertNotCalled(t, "AddFavorite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
