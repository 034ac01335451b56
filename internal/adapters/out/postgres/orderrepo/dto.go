// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order record aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order records.
// The derived ledger address is the primary key; the issued counter id carries
// a unique index so that no two records can share an issuance.
type OrderDTO struct {
	Address     []byte `gorm:"type:bytea;primaryKey"`
	ID          int64  `gorm:"uniqueIndex"`
	Customer    []byte `gorm:"type:bytea"`
	Courier     []byte `gorm:"type:bytea"`
	Amount      int64
	Status      int `gorm:"index"`
	CreatedAt   time.Time
	AcceptedAt  *time.Time
	CompletedAt *time.Time
}

// TableName specifies the database table name for order records.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order record aggregate to its database representation.
// Maps all record attributes including the optional courier assignment.
func fromDomain(record *order.Order) OrderDTO {
	var courier []byte
	if id := record.Courier(); id != nil {
		courier = id.Bytes()
	}

	return OrderDTO{
		Address:     record.Address().Bytes(),
		ID:          int64(record.ID()),
		Customer:    record.Customer().Bytes(),
		Courier:     courier,
		Amount:      int64(record.Amount()),
		Status:      int(record.Status()),
		CreatedAt:   record.CreatedAt(),
		AcceptedAt:  record.AcceptedAt(),
		CompletedAt: record.CompletedAt(),
	}
}

// toDomain converts a database DTO to an order record aggregate.
// Reconstructs the complete aggregate including status and courier assignment using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	customer, err := kernel.IdentityFromBytes(dto.Customer)
	if err != nil {
		return nil, err
	}

	var courier *kernel.Identity
	if len(dto.Courier) > 0 {
		c, courierErr := kernel.IdentityFromBytes(dto.Courier)
		if courierErr != nil {
			return nil, courierErr
		}

		courier = &c
	}

	return order.RestoreOrder(
		uint64(dto.ID),
		customer,
		courier,
		uint64(dto.Amount),
		order.Status(dto.Status),
		dto.CreatedAt,
		dto.AcceptedAt,
		dto.CompletedAt,
	)
}
