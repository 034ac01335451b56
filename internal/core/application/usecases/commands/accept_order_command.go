package commands

import (
	"errors"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/pkg/guard"
)

var ErrAcceptOrderCommandIsNotConstructed = errors.New(
	"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
)

// AcceptOrderCommand represents a courier's request to accept a Created order.
// The order is addressed by its deterministic ledger address; the acting
// identity becomes the record's courier on success.
//
// Example:
//
//	cmd, err := NewAcceptOrderCommand(address, courier)
//	if err != nil {
//	    return err
//	}
//	record, err := handler.Handle(ctx, cmd)
type AcceptOrderCommand struct { //nolint:recvcheck //using for validation
	address kernel.Address
	courier kernel.Identity

	guard guard.ConstructorGuard
}

// NewAcceptOrderCommand creates a command for a courier to accept an order.
// Validates that both the address and the courier identity are constructed.
func NewAcceptOrderCommand(address kernel.Address, courier kernel.Identity) (AcceptOrderCommand, error) {
	cmd := AcceptOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setAddress(address),
		cmd.setCourier(courier),
	); err != nil {
		return AcceptOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAcceptOrderCommandIsNotConstructed if validation fails.
func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

// Address returns the ledger address of the order to accept.
func (c AcceptOrderCommand) Address() kernel.Address {
	return c.address
}

// Courier returns the identity accepting the order.
func (c AcceptOrderCommand) Courier() kernel.Identity {
	return c.courier
}

func (c *AcceptOrderCommand) setAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}

	c.address = address
	return nil
}

func (c *AcceptOrderCommand) setCourier(courier kernel.Identity) error {
	if err := courier.Validate(); err != nil {
		return err
	}

	c.courier = courier
	return nil
}
