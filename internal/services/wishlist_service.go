package services

import (
	"context"
	"errors"
	"fmt"

	"zando/internal/domain"
)

// ErrAlreadyFavorite is reported instead of a second backend call.
var ErrAlreadyFavorite = errors.New("already in wishlist")

// Favorites is the session's wishlist.
type Favorites struct {
	api      FavoritesAPI
	user     *domain.User
	entries  Value[[]domain.FavoriteEntry]
	inflight InFlight
}

func NewFavorites(api FavoritesAPI, user *domain.User) *Favorites {
	return &Favorites{api: api, user: user}
}

func (f *Favorites) Load(ctx context.Context) error {
	if token(f.user) == "" {
		return ErrUnauthenticated
	}
	entries, err := f.api.Favorites(ctx, f.user.Token, f.user.ID)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	f.entries.Set(entries)
	return nil
}

func (f *Favorites) Entries() []domain.FavoriteEntry {
	return append([]domain.FavoriteEntry(nil), f.entries.Get()...)
}

func (f *Favorites) IsFavorite(productID int64) bool {
	return indexFavorite(f.entries.Get(), productID) >= 0
}

// IDs returns the favorite product ids as a set, for marking product cards.
func (f *Favorites) IDs() map[int64]bool {
	out := map[int64]bool{}
	for _, e := range f.entries.Get() {
		out[e.ProductID] = true
	}
	return out
}

func (f *Favorites) Add(ctx context.Context, productID int64) error {
	if token(f.user) == "" {
		return ErrUnauthenticated
	}
	done, err := f.inflight.Begin(fmt.Sprint(productID))
	if err != nil {
		return err
	}
	defer done()

	var stored domain.FavoriteEntry
	err = Optimistic(ctx, &f.entries,
		func(cur []domain.FavoriteEntry) ([]domain.FavoriteEntry, error) {
			if indexFavorite(cur, productID) >= 0 {
				return nil, ErrAlreadyFavorite
			}
			next := append([]domain.FavoriteEntry(nil), cur...)
			return append(next, domain.FavoriteEntry{ProductID: productID, UserID: f.user.ID}), nil
		},
		func(ctx context.Context) error {
			var err error
			stored, err = f.api.AddFavorite(ctx, f.user.Token, f.user.ID, productID)
			return err
		})
	if errors.Is(err, ErrAlreadyFavorite) {
		return err
	}
	if err != nil {
		return fmt.Errorf("add favorite %d: %w", productID, err)
	}
	if stored.ID != 0 {
		f.entries.Update(func(cur []domain.FavoriteEntry) []domain.FavoriteEntry {
			next := append([]domain.FavoriteEntry(nil), cur...)
			if i := indexFavorite(next, productID); i >= 0 {
				next[i].ID = stored.ID
			}
			return next
		})
	}
	return nil
}

// Remove drops productID from the wishlist. Removing a product that is not
// a favorite is a no-op.
func (f *Favorites) Remove(ctx context.Context, productID int64) error {
	if token(f.user) == "" {
		return ErrUnauthenticated
	}
	done, err := f.inflight.Begin(fmt.Sprint(productID))
	if err != nil {
		return err
	}
	defer done()

	err = Optimistic(ctx, &f.entries,
		func(cur []domain.FavoriteEntry) ([]domain.FavoriteEntry, error) {
			i := indexFavorite(cur, productID)
			if i < 0 {
				return nil, ErrNotFound
			}
			next := append([]domain.FavoriteEntry(nil), cur[:i]...)
			return append(next, cur[i+1:]...), nil
		},
		func(ctx context.Context) error {
			return f.api.RemoveFavorite(ctx, f.user.Token, f.user.ID, productID)
		})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove favorite %d: %w", productID, err)
	}
	return nil
}

// Toggle adds productID when absent and removes it otherwise.
func (f *Favorites) Toggle(ctx context.Context, productID int64) (added bool, err error) {
	if f.IsFavorite(productID) {
		return false, f.Remove(ctx, productID)
	}
	return true, f.Add(ctx, productID)
}

func indexFavorite(entries []domain.FavoriteEntry, productID int64) int {
	for i, e := range entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}
