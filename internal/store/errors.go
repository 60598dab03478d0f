package store

import (
	"errors"
	"fmt"
)

// ErrUnknownCollection is returned for a collection name outside ir.Collections.
var ErrUnknownCollection = errors.New("unknown collection")

// PersistenceError reports that a collection could not be loaded or saved.
//
// When returned from a ledger mutation, the in-memory ledger has not been
// changed and the caller may retry the operation.
type PersistenceError struct {
	// Op is "load", "save" or "commit".
	Op string

	// Collection names the collection involved, empty for event-log reads.
	Collection string

	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("persistence: %s %s: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError returns true if err wraps a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
