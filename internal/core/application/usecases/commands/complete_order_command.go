package commands

import (
	"errors"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/pkg/guard"
)

var ErrCompleteOrderCommandIsNotConstructed = errors.New(
	"CompleteOrderCommand must be created via NewCompleteOrderCommand constructor",
)

// CompleteOrderCommand represents a courier's request to mark an Accepted
// order as delivered. Only the courier that accepted the order may complete it.
type CompleteOrderCommand struct { //nolint:recvcheck //using for validation
	address kernel.Address
	actor   kernel.Identity

	guard guard.ConstructorGuard
}

// NewCompleteOrderCommand creates a command to complete an order.
// Validates that both the address and the acting identity are constructed.
func NewCompleteOrderCommand(address kernel.Address, actor kernel.Identity) (CompleteOrderCommand, error) {
	cmd := CompleteOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setAddress(address),
		cmd.setActor(actor),
	); err != nil {
		return CompleteOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCompleteOrderCommandIsNotConstructed if validation fails.
func (c CompleteOrderCommand) Validate() error {
	return c.guard.Validate(ErrCompleteOrderCommandIsNotConstructed)
}

// Address returns the ledger address of the order to complete.
func (c CompleteOrderCommand) Address() kernel.Address {
	return c.address
}

// Actor returns the identity requesting completion.
func (c CompleteOrderCommand) Actor() kernel.Identity {
	return c.actor
}

func (c *CompleteOrderCommand) setAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}

	c.address = address
	return nil
}

func (c *CompleteOrderCommand) setActor(actor kernel.Identity) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	c.actor = actor
	return nil
}
