package commands

import (
	"context"
	"time"

	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/core/domain/services"
	"blockdelivery/internal/core/ports"
)

// CompleteOrderCommandHandler handles the business logic for order completion.
//
// The transition is consulted against the transition authority (only the
// accepting courier may complete) and persisted with a status guard on
// Accepted, so a completion that already committed cannot silently apply twice.
type CompleteOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	authority  services.TransitionAuthority
	publisher  ports.EventPublisher
}

// NewCompleteOrderCommandHandler creates a handler for order completion operations.
func NewCompleteOrderCommandHandler(
	uowFactory OrderUoWFactory,
	authority services.TransitionAuthority,
	publisher ports.EventPublisher,
) CompleteOrderCommandHandler {
	return CompleteOrderCommandHandler{
		uowFactory: uowFactory,
		authority:  authority,
		publisher:  publisher,
	}
}

// Handle processes the completion command and returns the committed record.
// Fails with an errs.ObjectNotFoundError if no record exists at the address,
// order.ErrUnauthorized if the actor is not the accepting courier, and
// order.ErrInvalidTransition if the record is not in Accepted status.
// Emits OrderCompleted after commit.
func (h CompleteOrderCommandHandler) Handle(ctx context.Context, cmd CompleteOrderCommand) (*order.Order, error) {
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

	if err = h.authority.Authorize(cmd.Actor(), services.TransitionComplete, record); err != nil {
		return nil, err
	}

	if err = record.Complete(cmd.Actor(), time.Now()); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, record, order.Accepted); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	// The feed is best effort and the record is already committed.
	_ = h.publisher.Publish(ctx, order.NewOrderCompletedEvent(record))
	return record, nil
}
