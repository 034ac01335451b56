package ports

import (
	"context"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order record aggregates.
// Records are stored at their deterministic ledger address and updated through
// status-guarded writes so that racing transitions cannot overwrite each other.
type OrderRepository interface {
	// Add persists a new order record.
	// The record must be valid and not already exist at its address.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists a transitioned record with a lost-update guard: the write
	// only applies if the stored status still equals expectedStatus. When the
	// guard fails the repository re-reads to classify the outcome, returning
	// order.ErrInvalidTransition if the record moved on, or an
	// errs.ObjectNotFoundError if it does not exist.
	Update(ctx context.Context, aggregate *order.Order, expectedStatus order.Status) error

	// Get retrieves an order record by its ledger address.
	// Returns an errs.ObjectNotFoundError if no record exists at the address.
	Get(ctx context.Context, address kernel.Address) (*order.Order, error)
}
