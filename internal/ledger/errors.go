package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is; the wrapped detail
// names the offending field or record.
var (
	// ErrInvalidInput means a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicate means a record with the same id or natural key exists.
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidTransition means the requested status change is not allowed
	// from the record's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	// Kind is "drug", "shipment" or "inventory".
	Kind string
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// InsufficientInventoryError reports a sale larger than the on-hand quantity.
type InsufficientInventoryError struct {
	DrugID    string
	Requested int64
	Available int64
}

// Error implements the error interface.
func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for drug %q: requested %d, available %d",
		e.DrugID, e.Requested, e.Available)
}

// MalformedPathError reports a record whose status requires a custody path
// but whose path is empty.
type MalformedPathError struct {
	Kind string
	ID   string
}

// Error implements the error interface.
func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("%s %q has an empty custody path", e.Kind, e.ID)
}

// IsNotFound returns true if err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInsufficientInventory returns true if err wraps an InsufficientInventoryError.
func IsInsufficientInventory(err error) bool {
	var ie *InsufficientInventoryError
	return errors.As(err, &ie)
}

// IsMalformedPath returns true if err wraps a MalformedPathError.
func IsMalformedPath(err error) bool {
	var me *MalformedPathError
	return errors.As(err, &me)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
