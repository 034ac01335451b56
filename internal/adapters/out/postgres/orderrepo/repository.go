package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(address kernel.Address, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order record to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.Address(), aggregate)
	return nil
}

// Update saves a transitioned order record using a status-guarded write.
// The row is only touched while its stored status still equals expectedStatus.
// A guard miss is re-read and classified: a missing row becomes an
// ObjectNotFoundError, an advanced row becomes ErrInvalidTransition.
func (r *GormOrderRepository) Update(
	ctx context.Context,
	aggregate *order.Order,
	expectedStatus order.Status,
) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("address = ? AND status = ?", dto.Address, int(expectedStatus)).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.classifyGuardMiss(ctx, aggregate.Address())
	}

	r.tracker.TrackAggregate(aggregate.Address(), aggregate)
	return nil
}

func (r *GormOrderRepository) classifyGuardMiss(ctx context.Context, address kernel.Address) error {
	var current OrderDTO
	err := r.db.WithContext(ctx).First(&current, "address = ?", address.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError("order", address.String())
	}
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: order %s is %s",
		order.ErrInvalidTransition, address.String(), order.Status(current.Status))
}

// Get retrieves an order record by its ledger address.
func (r *GormOrderRepository) Get(ctx context.Context, address kernel.Address) (*order.Order, error) {
	if err := address.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "address = ?", address.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", address.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllUncompleted retrieves every record that has not reached the completed status.
func (r *GormOrderRepository) GetAllUncompleted(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Order("id").Find(&dtos, "status != ?", order.Completed).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}
