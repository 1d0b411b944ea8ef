package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the sku does not exist in the ledger.
	ErrNotFound = errors.New("sku not found")

	// ErrNothingToRelease covers both an unknown sku and a release larger
	// than the reserved count. The two causes are deliberately not
	// distinguished to the caller.
	ErrNothingToRelease = errors.New("nothing to release")
)

// InsufficientStockError rejects a reservation that does not fit. It carries
// the current available count so the caller can retry with a smaller
// quantity; that is part of the contract, not a debugging aid.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}
