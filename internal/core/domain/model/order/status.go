package order

import (
	"fmt"

	"blockdelivery/internal/pkg/errs"
)

// ErrInvalidTransition is returned when a requested state transition is not
// allowed from the record's current status. The state machine only ever
// advances forward: Created -> Accepted -> Completed, with no skips and no
// regression. A transition re-submitted after it already committed fails with
// this error rather than silently applying twice.
var ErrInvalidTransition = errs.NewValueIsInvalidError("order status transition")

// Status represents the lifecycle state of an order record.
// It implements a state machine with defined transitions so that records
// follow the protocol's forward-only workflow.
//
// State transitions:
//
//	Created ──> Accepted ──> Completed
//
// Acceptance happens exactly once; there is no reassignment, cancellation,
// or refund path. Status is a value object that validates state transitions
// and provides string representations for persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status assigned when an order record is committed.
	// Records in this status are waiting for a courier to accept them.
	Created

	// Accepted indicates a courier has accepted the order.
	// The accepting courier is fixed for the remainder of the lifecycle.
	Accepted

	// Completed indicates the order has been delivered.
	// This is a terminal status with no further transitions allowed.
	Completed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Created:   "Created",
		Accepted:  "Accepted",
		Completed: "Completed",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Created:   "Created",
		Accepted:  "Accepted",
		Completed: "Completed",
	}
}

// Validate checks if the Status value is valid.
// Valid statuses are Created, Accepted, and Completed; Unknown (0) and any
// other values are invalid. Used to check Status values arriving from
// external sources (database rows, event payloads) before use.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements fmt.Stringer and is safe to call on any Status value,
// including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Accept transitions the status to Accepted.
//
// Valid transitions:
//   - Created -> Accepted
//
// Every other source status fails with ErrInvalidTransition: a record that is
// already Accepted cannot be accepted again (the lost-update guard for racing
// couriers), and a Completed record is terminal.
func (s Status) Accept() (Status, error) {
	if s != Created {
		return 0, fmt.Errorf("cannot accept order in status %s: %w", s, ErrInvalidTransition)
	}

	return Accepted, nil
}

// Complete transitions the status to Completed.
//
// Valid transitions:
//   - Accepted -> Completed
//
// A Created record must be accepted first; a Completed record is terminal.
// Every other source status fails with ErrInvalidTransition.
func (s Status) Complete() (Status, error) {
	if s != Accepted {
		return 0, fmt.Errorf("cannot complete order in status %s: %w", s, ErrInvalidTransition)
	}

	return Completed, nil
}

// ValidateCanHaveCourier validates the consistency between order status and
// courier assignment: a courier is present iff the record has left Created.
func (s Status) ValidateCanHaveCourier(courier bool) error {
	if courier && s != Accepted && s != Completed {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a courier", s.String()),
		)
	}

	if !courier && (s == Accepted || s == Completed) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no courier", s.String()),
		)
	}

	return nil
}
