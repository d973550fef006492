package cart

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found in cart")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrClosed          = errors.New("cart store closed")
	ErrPersist         = errors.New("failed to persist cart")
	ErrNoProvider      = errors.New("cart: store must be used within a cart provider")
)

// PersistError is returned by a mutation whose in-memory change was applied but whose
// write-through failed. The state is kept; the next successful write re-syncs storage.
type PersistError struct {
	UpdateCounter uint64
	Err           error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%v (update %d): %v", ErrPersist, e.UpdateCounter, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersist, e.Err}
}
