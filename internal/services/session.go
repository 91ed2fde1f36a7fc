package services

import (
	"context"
	"errors"
	"sync"

	"zando/internal/domain"
	"zando/internal/events"
)

// Session holds the per-user stores of one signed-in browser session. It is
// built on login and dropped on logout.
type Session struct {
	SID           string
	User          *domain.User
	Cart          *Cart
	Favorites     *Favorites
	Notifications *Notifications
	Checkout      *Checkout
	Board         *Board // admins only

	// loadMu serializes reloads; unloaded holds the stores whose last load failed.
	loadMu   sync.Mutex
	mu       sync.Mutex
	unloaded map[string]func(context.Context) error
}

// EnsureLoaded reloads the stores that could not be loaded earlier. Stores
// that fail again stay marked and are retried on the next call.
func (s *Session) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	empty := len(s.unloaded) == 0
	s.mu.Unlock()
	if empty {
		return nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	s.mu.Lock()
	retry := s.unloaded
	s.unloaded = nil
	s.mu.Unlock()

	var errs []error
	for name, load := range retry {
		if err := load(ctx); err != nil {
			errs = append(errs, err)
			s.markUnloaded(name, load)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) markUnloaded(name string, load func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unloaded == nil {
		s.unloaded = map[string]func(context.Context) error{}
	}
	s.unloaded[name] = load
}

// Stale reports whether some store is still waiting for a successful load.
func (s *Session) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unloaded) > 0
}

// Registry owns the live sessions, keyed by sid.
type Registry struct {
	api    Backend
	events events.Publisher
	fee    float64

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(api Backend, pub events.Publisher, deliveryFee float64) *Registry {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Registry{api: api, events: pub, fee: deliveryFee, sessions: map[string]*Session{}}
}

// Open builds the stores for user, loads cart, favorites and notifications,
// and registers the session under sid, replacing any session held there.
// Load failures are returned joined but the session is registered
// regardless; failed stores start empty and are retried by EnsureLoaded.
func (r *Registry) Open(ctx context.Context, sid string, user *domain.User) (*Session, error) {
	s, err := r.build(ctx, sid, user)
	r.mu.Lock()
	r.sessions[sid] = s
	r.mu.Unlock()
	return s, err
}

// Resume returns the session registered under sid, or opens one for user.
// Concurrent first requests for the same sid end up sharing one session.
func (r *Registry) Resume(ctx context.Context, sid string, user *domain.User) (*Session, error) {
	if s, ok := r.Get(sid); ok {
		return s, nil
	}
	s, err := r.build(ctx, sid, user)
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[sid]; ok {
		return cur, nil
	}
	r.sessions[sid] = s
	return s, err
}

func (r *Registry) build(ctx context.Context, sid string, user *domain.User) (*Session, error) {
	s := &Session{SID: sid, User: user}
	s.Cart = NewCart(r.api, user)
	s.Favorites = NewFavorites(r.api, user)
	s.Notifications = NewNotifications(r.api, user)
	s.Checkout = NewCheckout(r.api, s.Cart, user, r.events, r.fee)
	if user.IsAdmin() {
		s.Board = NewBoard(r.api, user, r.events)
	}

	stores := []struct {
		name string
		load func(context.Context) error
	}{
		{"cart", s.Cart.Load},
		{"favorites", s.Favorites.Load},
		{"notifications", s.Notifications.Load},
	}
	var wg sync.WaitGroup
	errs := make([]error, len(stores))
	for i, st := range stores {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = st.load(ctx)
		}()
	}
	wg.Wait()
	for i, st := range stores {
		if errs[i] != nil {
			s.markUnloaded(st.name, st.load)
		}
	}
	return s, errors.Join(errs...)
}

func (r *Registry) Get(sid string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	return s, ok
}

func (r *Registry) Close(sid string) {
	r.mu.Lock()
	delete(r.sessions, sid)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// DeliveryFee is the fee added to every order total.
func (r *Registry) DeliveryFee() float64 { return r.fee }
