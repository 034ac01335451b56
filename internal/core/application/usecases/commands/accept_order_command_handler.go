package commands

import (
	"context"
	"time"

	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/core/domain/services"
	"blockdelivery/internal/core/ports"
)

// AcceptOrderCommandHandler handles the business logic for order acceptance.
//
// The transition is consulted against the transition authority, applied on the
// aggregate, and persisted with a status guard on Created: when several
// couriers race to accept the same order, exactly one guarded write succeeds
// and all others surface order.ErrInvalidTransition.
//
// Example:
//
//	handler := NewAcceptOrderCommandHandler(uowFactory, authority, publisher)
//	cmd, _ := NewAcceptOrderCommand(address, courier)
//
//	record, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, order.ErrInvalidTransition) {
//	    // someone else accepted first
//	}
type AcceptOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	authority  services.TransitionAuthority
	publisher  ports.EventPublisher
}

// NewAcceptOrderCommandHandler creates a handler for order acceptance operations.
func NewAcceptOrderCommandHandler(
	uowFactory OrderUoWFactory,
	authority services.TransitionAuthority,
	publisher ports.EventPublisher,
) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		authority:  authority,
		publisher:  publisher,
	}
}

// Handle processes the acceptance command and returns the committed record.
// Fails with an errs.ObjectNotFoundError if no record exists at the address,
// order.ErrUnauthorized if the customer tries to accept their own order, and
// order.ErrInvalidTransition if the record is no longer in Created status.
// Emits OrderAccepted after commit.
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	record, err := repo.Get(ctx, cmd.Address())
	if err != nil {
		return nil, err
	}

	if err = h.authority.Authorize(cmd.Courier(), services.TransitionAccept, record); err != nil {
		return nil, err
	}

	if err = record.Accept(cmd.Courier(), time.Now()); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, record, order.Created); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	// The feed is best effort and the record is already committed.
	_ = h.publisher.Publish(ctx, order.NewOrderAcceptedEvent(record))
	return record, nil
}
