package journey

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no journey exists for the requested id.
var ErrNotFound = errors.New("journey not found")

// IdentityError reports a malformed journey identifier. It is raised before
// any database round-trip.
type IdentityError struct {
	ID  string
	Err error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("invalid journey id %q: %v", e.ID, e.Err)
}

func (e *IdentityError) Unwrap() error { return e.Err }

// ValidationError reports an out-of-range or inconsistent document field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError reports a failed store operation: constraint violation,
// lost connection, aborted transaction. The transaction it wraps has been
// rolled back; callers must not assume partial application.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
