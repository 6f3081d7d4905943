/*
errors.go - Centralized error taxonomy for the lease engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Every engine function is total: it returns a valid result or fails
  with exactly one of these kinds. The engine never logs or swallows
  errors - the hosting layer translates them into user-facing messages
  and HTTP status codes.

ERROR KINDS:
  ErrNotFound          Unknown contract/payment/incident reference
  ErrInvalidState      Operation illegal for the current lifecycle state
  ErrInvalidAmount     Non-positive tender, or overpaying beyond the
                       outstanding balance
  ErrInvalidTransition Illegal contract or incident status change
  ErrDataIntegrity     Malformed contract parameters or index table
                       (e.g. endDate <= startDate, unknown policy)
  ErrStaleWrite        Optimistic concurrency conflict at the store

USAGE:
  Structured errors carry context and Unwrap() to the sentinels:

    if errors.Is(err, lease.ErrInvalidTransition) {
        // 409 Conflict
    }

SEE ALSO:
  - api/handlers.go: Maps these kinds to HTTP status codes
  - storage.go: ErrStaleWrite contract for Save
*/
package lease

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced contract, payment or
	// incident does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is illegal for the
	// contract's current lifecycle state (e.g. registering a payment on
	// a finished contract).
	ErrInvalidState = errors.New("invalid contract state")

	// ErrInvalidAmount is returned for non-positive tenders and for
	// tenders exceeding the outstanding balance.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidTransition is returned for illegal status changes on
	// contracts and incidents.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrDataIntegrity is returned for malformed contract parameters or
	// index tables. Unknown adjustment policies fail here rather than
	// silently defaulting.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrStaleWrite is returned by stores when optimistic concurrency
	// control detects a conflicting concurrent save.
	ErrStaleWrite = errors.New("stale write: contract modified concurrently")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StateError reports an operation attempted in a state that forbids it.
type StateError struct {
	Op     string
	Status ContractStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed while contract is %s", e.Op, e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// TransitionError reports an illegal status change request.
type TransitionError struct {
	Entity string // "contract" or "incident"
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// AmountError reports a rejected tender.
type AmountError struct {
	Reason   string
	Tendered Money
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: %s", e.Tendered, e.Reason)
}

func (e *AmountError) Unwrap() error { return ErrInvalidAmount }

// IntegrityError reports a malformed field on a contract or index table.
type IntegrityError struct {
	Field  string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrDataIntegrity }

// NotFoundError identifies the missing reference.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Ref)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrDataIntegrity)
}

// IsConflict returns true if the error reflects a state or concurrency
// conflict rather than bad input.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrStaleWrite)
}

// IsNotFound returns true if the error indicates a missing reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
