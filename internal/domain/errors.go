package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIngestion covers missing or unreadable sources and empty corpora.
	ErrIngestion = errors.New("ingestion failed")
	// ErrProvider marks an embedding backend failure.
	ErrProvider = errors.New("embedding provider failed")
	// ErrDimensionMismatch is returned when vector sizes disagree with the store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrProviderMismatch is returned when a store is opened with a provider
	// other than the one that built it.
	ErrProviderMismatch = errors.New("embedding provider mismatch")
	// ErrStoreNotFound is returned when the persisted index does not exist.
	ErrStoreNotFound = errors.New("index not found")
	// ErrGeneration marks a downstream model failure.
	ErrGeneration = errors.New("generation failed")
	// ErrReadOnly is returned by Upsert on a store opened for querying.
	ErrReadOnly = errors.New("store is read-only; rebuild the index to change it")
)

// ProviderError wraps a failure of the named embedding provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// DimensionMismatchError reports the expected and received vector sizes.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%v: store has %d dimensions, got %d", ErrDimensionMismatch, e.Want, e.Got)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// ProviderMismatchError reports the provider recorded in the index and the
// one trying to use it.
type ProviderMismatchError struct {
	Stored string
	Active string
}

func (e *ProviderMismatchError) Error() string {
	return fmt.Sprintf("%v: index built with %q, queried with %q", ErrProviderMismatch, e.Stored, e.Active)
}

func (e *ProviderMismatchError) Is(target error) bool { return target == ErrProviderMismatch }

// IsConfigFault reports whether err means the system is misconfigured rather
// than transiently degraded.
func IsConfigFault(err error) bool {
	return errors.Is(err, ErrDimensionMismatch) ||
		errors.Is(err, ErrProviderMismatch) ||
		errors.Is(err, ErrStoreNotFound)
}

// AsProviderError wraps err as a *ProviderError unless it already is one.
func AsProviderError(provider string, err error) error {
	if err == nil || errors.Is(err, ErrProvider) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}
