package order

import (
	"errors"
	"fmt"
	"time"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder factory method. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrInvalidAmount is returned when an order is created with a zero amount.
	ErrInvalidAmount = errs.NewValueIsInvalidError("amount must be greater than 0")

	// ErrUnauthorized is returned when an actor requests a transition they have no
	// rights over: completing an order they did not accept, or accepting their own order.
	ErrUnauthorized = errors.New("actor is not authorized for this transition")
)

// Order is the aggregate root for a delivery order record on the ledger.
// It manages the order lifecycle from creation through acceptance to completion.
//
// Order follows these invariants:
//   - The id is globally unique, issued by the counter registry, immutable once set
//   - The record address is a deterministic function of the id; equal ids map to equal addresses
//   - Customer and amount are immutable; amount is positive
//   - Courier is nil exactly while the status is Created, and is set exactly once on acceptance
//   - AcceptedAt is set iff the status is Accepted or Completed; CompletedAt iff Completed
//   - Status transitions only advance forward and can only be performed through
//     the Accept and Complete methods
//
// The struct uses private fields to ensure encapsulation and maintains its
// invariants through validated methods.
type Order struct {
	// id is the globally unique identifier issued by the counter registry
	id uint64

	// address is the record's deterministic ledger address, derived from id
	address kernel.Address

	// customer is the identity that created the order
	customer kernel.Identity

	// courier is the accepting courier's identity (nil until accepted)
	courier *kernel.Identity

	// amount is the order value (must be positive)
	amount uint64

	// status is the current state in the order lifecycle
	status Status

	// lifecycle timestamps, each set once on the corresponding transition
	createdAt   time.Time
	acceptedAt  *time.Time
	completedAt *time.Time

	// isConstructed ensures the order was created via NewOrder or RestoreOrder
	isConstructed bool
}

// NewOrder creates a new Order record in Created status. This is the only way to
// create a fresh order, ensuring all business invariants hold from the start.
//
// Parameters:
//   - id: Freshly issued identifier from the counter registry
//   - customer: The identity creating the order
//   - amount: Order value (must be greater than 0, fails with ErrInvalidAmount otherwise)
//   - now: Commit timestamp recorded as CreatedAt
//
// The record address is derived from the id using the canonical global-id scheme.
//
// Example:
//
//	record, err := order.NewOrder(id, customer, 1000, time.Now().UTC())
//	if err != nil {
//	    // validation failed
//	}
func NewOrder(id uint64, customer kernel.Identity, amount uint64, now time.Time) (*Order, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	address, err := kernel.DeriveOrderAddress(id)
	if err != nil {
		return nil, err
	}

	return &Order{
		id:            id,
		address:       address,
		customer:      customer,
		amount:        amount,
		status:        Created,
		createdAt:     now.UTC(),
		isConstructed: true,
	}, nil
}

// RestoreOrder reconstructs an Order from persistence.
// Unlike NewOrder it accepts any lifecycle position, but it validates the full
// set of cross-field invariants (status validity, courier presence, timestamp
// consistency) so that corrupted rows cannot masquerade as valid aggregates.
func RestoreOrder(
	id uint64,
	customer kernel.Identity,
	courier *kernel.Identity,
	amount uint64,
	status Status,
	createdAt time.Time,
	acceptedAt *time.Time,
	completedAt *time.Time,
) (*Order, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	if err := status.Validate(); err != nil {
		return nil, err
	}

	if err := status.ValidateCanHaveCourier(courier != nil); err != nil {
		return nil, err
	}

	if courier != nil {
		if err := courier.Validate(); err != nil {
			return nil, err
		}
	}

	if (acceptedAt != nil) != (status == Accepted || status == Completed) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"acceptedAt", fmt.Errorf("inconsistent with status %s", status))
	}

	if (completedAt != nil) != (status == Completed) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"completedAt", fmt.Errorf("inconsistent with status %s", status))
	}

	address, err := kernel.DeriveOrderAddress(id)
	if err != nil {
		return nil, err
	}

	return &Order{
		id:            id,
		address:       address,
		customer:      customer,
		courier:       courier,
		amount:        amount,
		status:        status,
		createdAt:     createdAt.UTC(),
		acceptedAt:    acceptedAt,
		completedAt:   completedAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the Order instance was properly constructed through
// NewOrder or RestoreOrder. This prevents bypassing validation by directly
// instantiating the struct.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id == other.id
}

// ID returns the order's globally unique identifier.
func (o *Order) ID() uint64 {
	return o.id
}

// Address returns the order's deterministic ledger address.
func (o *Order) Address() kernel.Address {
	return o.address
}

// Customer returns the identity that created the order.
func (o *Order) Customer() kernel.Identity {
	return o.customer
}

// Courier returns the accepting courier's identity.
// Returns nil while the order is still in Created status.
func (o *Order) Courier() *kernel.Identity {
	return o.courier
}

// Amount returns the order value.
func (o *Order) Amount() uint64 {
	return o.amount
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// AcceptedAt returns the acceptance timestamp, or nil if not yet accepted.
func (o *Order) AcceptedAt() *time.Time {
	return o.acceptedAt
}

// CompletedAt returns the completion timestamp, or nil if not yet completed.
func (o *Order) CompletedAt() *time.Time {
	return o.completedAt
}

// Accept records a courier's acceptance of the order.
//
// Business rules enforced:
//   - The courier identity must be valid
//   - The customer may not accept their own order (ErrUnauthorized)
//   - The order must be in Created status (ErrInvalidTransition otherwise)
//   - The courier is set exactly once; there is no reassignment
//
// On success the status becomes Accepted and AcceptedAt is recorded.
func (o *Order) Accept(courier kernel.Identity, now time.Time) error {
	if err := courier.Validate(); err != nil {
		return err
	}

	if courier.IsEqual(o.customer) {
		return fmt.Errorf("customer cannot accept their own order: %w", ErrUnauthorized)
	}

	newStatus, err := o.status.Accept()
	if err != nil {
		return err
	}

	acceptedAt := now.UTC()
	o.status = newStatus
	o.courier = &courier
	o.acceptedAt = &acceptedAt
	return nil
}

// Complete marks the order as delivered.
//
// Business rules enforced:
//   - Only the courier that accepted the order may complete it (ErrUnauthorized
//     for the customer or any other identity)
//   - The order must be in Accepted status (ErrInvalidTransition otherwise)
//
// On success the status becomes Completed, the terminal state, and CompletedAt
// is recorded.
func (o *Order) Complete(actor kernel.Identity, now time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	if o.courier == nil || !actor.IsEqual(*o.courier) {
		return fmt.Errorf("only the accepting courier may complete the order: %w", ErrUnauthorized)
	}

	completedAt := now.UTC()
	o.status = newStatus
	o.completedAt = &completedAt
	return nil
}
