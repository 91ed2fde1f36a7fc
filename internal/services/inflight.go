package services

import (
	"errors"
	"sync"
)

// ErrInFlight is returned when the same mutation is triggered again before
// the first request for it finished.
var ErrInFlight = errors.New("request already in progress")

// InFlight marks entity keys with an outstanding backend request.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// Begin marks key as busy. The returned func clears the mark.
func (f *InFlight) Begin(key string) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = map[string]struct{}{}
	}
	if _, busy := f.keys[key]; busy {
		return nil, ErrInFlight
	}
	f.keys[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.keys, key)
		f.mu.Unlock()
	}, nil
}

func (f *InFlight) Busy(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[key]
	return ok
}
