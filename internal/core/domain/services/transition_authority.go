package services

import (
	"fmt"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"
)

// Transition identifies a requested lifecycle mutation on an order record.
type Transition int

const (
	// TransitionCreate creates a new order record.
	TransitionCreate Transition = iota + 1

	// TransitionAccept assigns the acting courier to a Created order.
	TransitionAccept

	// TransitionComplete marks an Accepted order as delivered.
	TransitionComplete
)

// String returns the human-readable name of the transition.
func (t Transition) String() string {
	switch t {
	case TransitionCreate:
		return "create"
	case TransitionAccept:
		return "accept"
	case TransitionComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// TransitionAuthority is the stateless domain service gating every mutating
// operation on order records. Given an actor identity, a requested transition,
// and the current record, it decides allow or deny; a denial is authoritative
// and no caller may bypass it.
//
// Decision rules:
//   - create: always allowed; any identity may become a customer
//   - accept: allowed for any actor except the record's own customer, and only
//     while the record is in Created status
//   - complete: allowed only for the accepting courier, and only while the
//     record is in Accepted status
//
// Example usage:
//
//	authority := services.NewTransitionAuthority()
//	if err := authority.Authorize(actor, services.TransitionAccept, record); err != nil {
//	    // denied: ErrUnauthorized or ErrInvalidTransition
//	    return err
//	}
//	// proceed with the guarded write
type TransitionAuthority struct{}

// NewTransitionAuthority creates a new TransitionAuthority instance.
func NewTransitionAuthority() TransitionAuthority {
	return TransitionAuthority{}
}

// Authorize decides whether actor may perform the requested transition on record.
// Returns nil to allow; order.ErrUnauthorized or order.ErrInvalidTransition to deny.
// The record may be nil only for TransitionCreate.
func (a TransitionAuthority) Authorize(
	actor kernel.Identity,
	transition Transition,
	record *order.Order,
) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	if transition == TransitionCreate {
		return nil
	}

	if err := record.Validate(); err != nil {
		return err
	}

	switch transition {
	case TransitionAccept:
		if actor.IsEqual(record.Customer()) {
			return fmt.Errorf("customer cannot accept their own order: %w", order.ErrUnauthorized)
		}
		if record.Status() != order.Created {
			return fmt.Errorf("cannot accept order in status %s: %w", record.Status(), order.ErrInvalidTransition)
		}
		return nil

	case TransitionComplete:
		if record.Status() != order.Accepted {
			return fmt.Errorf("cannot complete order in status %s: %w", record.Status(), order.ErrInvalidTransition)
		}
		if courier := record.Courier(); courier == nil || !actor.IsEqual(*courier) {
			return fmt.Errorf("only the accepting courier may complete the order: %w", order.ErrUnauthorized)
		}
		return nil

	default:
		return fmt.Errorf("unknown transition %d: %w", transition, order.ErrInvalidTransition)
	}
}
