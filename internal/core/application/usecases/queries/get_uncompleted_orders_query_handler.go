package queries

import (
	"context"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetUncompletedOrdersQueryHandler retrieves non-completed orders from the database.
// Filters out completed orders to provide active order workload visibility.
//
// Example:
//
//	handler := NewGetUncompletedOrdersQueryHandler(db)
//	query := NewGetUncompletedOrdersQuery()
//
//	activeOrders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get active orders: %v", err)
//	    return err
//	}
type GetUncompletedOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetUncompletedOrdersQueryHandler creates a handler for active order queries.
// Requires a GORM database connection for query execution.
func NewGetUncompletedOrdersQueryHandler(db *gorm.DB) GetUncompletedOrdersQueryHandler {
	return GetUncompletedOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve all uncompleted orders.
// Returns orders in "created" or "accepted" status, excluding completed ones.
// Results are sorted by issuance ID for consistent output.
func (h GetUncompletedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetUncompletedOrdersQuery,
) ([]OrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]OrderQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			address,
			customer,
			courier,
			amount,
			status
		FROM orders
		WHERE status != ?
		ORDER BY id
	`, order.Completed).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      int64
			address []byte
			custRaw []byte
			courRaw []byte
			amount  int64
			status  int
		)

		err = rows.Scan(&id, &address, &custRaw, &courRaw, &amount, &status)
		if err != nil {
			return nil, err
		}

		resp, respErr := buildOrderQueryResponse(id, address, custRaw, courRaw, amount, status)
		if respErr != nil {
			return nil, respErr
		}
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func buildOrderQueryResponse(
	id int64,
	address, custRaw, courRaw []byte,
	amount int64,
	status int,
) (OrderQueryResponse, error) {
	orderAddress, err := kernel.AddressFromBytes(address)
	if err != nil {
		return OrderQueryResponse{}, err
	}

	customer, err := kernel.IdentityFromBytes(custRaw)
	if err != nil {
		return OrderQueryResponse{}, err
	}

	var courier *kernel.Identity
	if len(courRaw) > 0 {
		c, courErr := kernel.IdentityFromBytes(courRaw)
		if courErr != nil {
			return OrderQueryResponse{}, courErr
		}
		courier = &c
	}

	return OrderQueryResponse{
		ID:       uint64(id),
		Address:  orderAddress,
		Customer: customer,
		Courier:  courier,
		Amount:   uint64(amount),
		Status:   order.Status(status),
	}, nil
}
