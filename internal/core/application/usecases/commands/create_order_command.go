package commands

import (
	"errors"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to create a new delivery order record.
// The acting identity becomes the record's customer; the order id is issued by
// the shared counter registry during handling, never supplied by the caller.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(customer, 1000)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	record, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
//	fmt.Printf("Order %d created at %s", record.ID(), record.Address())
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	customer kernel.Identity
	amount   uint64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new delivery order.
// Validates that the customer identity is constructed and the amount is positive.
func NewCreateOrderCommand(customer kernel.Identity, amount uint64) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomer(customer),
		cmd.setAmount(amount),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// Customer returns the identity creating the order.
func (c CreateOrderCommand) Customer() kernel.Identity {
	return c.customer
}

// Amount returns the order value.
func (c CreateOrderCommand) Amount() uint64 {
	return c.amount
}

func (c *CreateOrderCommand) setCustomer(customer kernel.Identity) error {
	if err := customer.Validate(); err != nil {
		return err
	}

	c.customer = customer
	return nil
}

func (c *CreateOrderCommand) setAmount(amount uint64) error {
	if amount == 0 {
		return order.ErrInvalidAmount
	}

	c.amount = amount
	return nil
}
