package services

import (
	"context"
	"sync"
)

// Value is session state that is changed optimistically: the local copy is
// updated first and restored if the backend rejects the change.
type Value[T any] struct {
	mu sync.Mutex
	v  T

	// writer is held from apply until commit returns, so a rollback never
	// replaces a change the backend has already accepted.
	writer chan struct{}
}

func (s *Value[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

func (s *Value[T]) Set(v T) {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
}

// Update replaces the value with fn(current) under the lock.
func (s *Value[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.v = fn(s.v)
	s.mu.Unlock()
}

// lockWriter waits for the running optimistic change, if any, to finish.
func (s *Value[T]) lockWriter(ctx context.Context) (func(), error) {
	s.mu.Lock()
	if s.writer == nil {
		s.writer = make(chan struct{}, 1)
	}
	w := s.writer
	s.mu.Unlock()
	select {
	case w <- struct{}{}:
		return func() { <-w }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Optimistic applies a local change, then commits it. When commit fails the
// value is reset to the snapshot taken before apply, as a whole. Changes to
// one value run one after another; a second one waits until the first has
// committed or been rolled back.
//
// apply must not modify its argument in place (copy slices before editing),
// otherwise the snapshot is modified with it. An error from apply aborts
// before commit and leaves the value untouched.
func Optimistic[T any](ctx context.Context, s *Value[T], apply func(T) (T, error), commit func(context.Context) error) error {
	unlock, err := s.lockWriter(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.Lock()
	snapshot := s.v
	next, err := apply(snapshot)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.v = next
	s.mu.Unlock()

	if err := commit(ctx); err != nil {
		s.Set(snapshot)
		return err
	}
	return nil
}
