package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blockdelivery/internal/core/domain/model/counter"
	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/core/domain/services"
	"blockdelivery/internal/core/ports"
)

// DefaultIssuanceAttempts is the retry budget for identifier issuance when the
// counter registry write keeps losing the compare-and-swap race.
const DefaultIssuanceAttempts = 3

// CreateOrderCommandHandler handles the business logic for order creation.
//
// Creation pairs two writes in one atomic commit: the counter registry bump
// that issues the order id, and the insert of the record at its derived
// address. A lost counter race surfaces as counter.ErrStaleCounterRead and is
// retried in a fresh transaction up to the configured budget; exhaustion
// surfaces as counter.ErrIssuanceExhausted. This retry is the system's sole
// built-in retry point.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, authority, publisher, 0)
//	cmd, _ := NewCreateOrderCommand(customer, 1000)
//
//	record, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// record.ID() is globally unique; OrderCreated has been emitted
type CreateOrderCommandHandler struct {
	uowFactory  LedgerUoWFactory
	authority   services.TransitionAuthority
	publisher   ports.EventPublisher
	maxAttempts int
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// maxAttempts bounds the issuance retry loop; a non-positive value selects
// DefaultIssuanceAttempts.
func NewCreateOrderCommandHandler(
	uowFactory LedgerUoWFactory,
	authority services.TransitionAuthority,
	publisher ports.EventPublisher,
	maxAttempts int,
) CreateOrderCommandHandler {
	if maxAttempts <= 0 {
		maxAttempts = DefaultIssuanceAttempts
	}

	return CreateOrderCommandHandler{
		uowFactory:  uowFactory,
		authority:   authority,
		publisher:   publisher,
		maxAttempts: maxAttempts,
	}
}

// Handle processes the order creation command and returns the committed record.
// Issues a fresh id from the counter registry, creates the record in Created
// status at its derived address, and emits OrderCreated after commit.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if err := h.authority.Authorize(cmd.Customer(), services.TransitionCreate, nil); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < h.maxAttempts; attempt++ {
		record, err := h.createOnce(ctx, cmd)
		if errors.Is(err, counter.ErrStaleCounterRead) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		// The feed is best effort and the record is already committed;
		// observers that miss the event recover by re-reading state.
		_ = h.publisher.Publish(ctx, order.NewOrderCreatedEvent(record))
		return record, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", counter.ErrIssuanceExhausted, h.maxAttempts, lastErr)
}

// createOnce runs a single issuance attempt inside its own transaction.
func (h CreateOrderCommandHandler) createOnce(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	registry, err := uow.CounterRepository().GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	id := registry.Issue()

	record, err := order.NewOrder(id, cmd.Customer(), cmd.Amount(), time.Now())
	if err != nil {
		return nil, err
	}

	// The registry CAS runs before the insert: the loser of an issuance race
	// must fail the version check, never collide on the record's address.
	if err = uow.CounterRepository().Save(ctx, registry); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, record); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return record, nil
}
