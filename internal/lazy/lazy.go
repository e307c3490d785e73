// Package lazy holds expensive shared resources that are created on first use.
package lazy

import (
	"context"
	"sync"
)

// Value initializes a T at most once per successful init. A failed init is
// not cached, so the next Get retries it. Concurrent callers wait on the
// same lock instead of racing duplicate loads.
type Value[T any] struct {
	mu     sync.Mutex
	init   func(context.Context) (T, error)
	closer func(T) error
	val    T
	ready  bool
}

// New returns a Value built by init. closer, when non-nil, releases the value on Close.
func New[T any](init func(context.Context) (T, error), closer func(T) error) *Value[T] {
	return &Value[T]{init: init, closer: closer}
}

// Of wraps an already built value.
func Of[T any](v T) *Value[T] {
	return &Value[T]{val: v, ready: true}
}

// Get returns the value, initializing it if needed.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ready {
		return v.val, nil
	}
	val, err := v.init(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	v.val, v.ready = val, true
	return val, nil
}

// Close releases an initialized value. A later Get initializes again.
func (v *Value[T]) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.ready {
		return nil
	}
	var err error
	if v.closer != nil {
		err = v.closer(v.val)
	}
	var zero T
	v.val, v.ready = zero, false
	return err
}
