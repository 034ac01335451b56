package queries

import (
	"context"
	"database/sql"
	"errors"

	"blockdelivery/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderQueryHandler retrieves a single order record by address.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single order lookups.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the lookup. Returns an ObjectNotFoundError when no record
// exists at the given address.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (OrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return OrderQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			address,
			customer,
			courier,
			amount,
			status
		FROM orders
		WHERE address = ?
	`, query.Address().Bytes()).Row()

	var (
		id      int64
		address []byte
		custRaw []byte
		courRaw []byte
		amount  int64
		status  int
	)

	err := row.Scan(&id, &address, &custRaw, &courRaw, &amount, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderQueryResponse{}, errs.NewObjectNotFoundError("address", query.Address().String())
	}
	if err != nil {
		return OrderQueryResponse{}, err
	}

	return buildOrderQueryResponse(id, address, custRaw, courRaw, amount, status)
}
