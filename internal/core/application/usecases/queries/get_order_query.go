package queries

import (
	"errors"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery retrieves a single order record by its derived address.
//
// Example:
//
//	query, err := NewGetOrderQuery(address)
//	if err != nil {
//	    return err
//	}
//
//	record, err := handler.Handle(ctx, query)
type GetOrderQuery struct {
	address kernel.Address

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for a single order lookup.
// Returns an error if the address is the zero value.
func NewGetOrderQuery(address kernel.Address) (GetOrderQuery, error) {
	if err := address.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		address: address,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Address returns the record address being looked up.
func (q GetOrderQuery) Address() kernel.Address {
	return q.address
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderQueryIsNotConstructed if validation fails.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}
