package counterrepo

import (
	"context"
	"errors"
	"fmt"

	"blockdelivery/internal/core/domain/model/counter"
	"blockdelivery/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormCounterRepository implements CounterRepository using GORM.
type GormCounterRepository struct {
	db *gorm.DB
}

// NewGormCounterRepository creates a new GORM counter registry repository.
func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

// GetOrCreate reads the registry row, initializing it at zero on first use.
// A racing initialization surfaces as counter.ErrStaleCounterRead so the
// caller re-reads on its next attempt.
func (r *GormCounterRepository) GetOrCreate(ctx context.Context) (*counter.Registry, error) {
	address, err := kernel.DeriveCounterAddress()
	if err != nil {
		return nil, err
	}

	var dto RegistryDTO
	err = r.db.WithContext(ctx).First(&dto, "address = ?", address.Bytes()).Error
	if err == nil {
		return toDomain(dto)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	registry, err := counter.NewRegistry()
	if err != nil {
		return nil, err
	}

	dto = fromDomain(registry)
	if createErr := r.db.WithContext(ctx).Create(&dto).Error; createErr != nil {
		return nil, fmt.Errorf("%w: %w", counter.ErrStaleCounterRead, createErr)
	}

	return registry, nil
}

// Save persists the registry conditioned on its version being unchanged since
// read. The version advances on every successful write; a version mismatch
// means another issuance committed first and returns counter.ErrStaleCounterRead.
func (r *GormCounterRepository) Save(ctx context.Context, registry *counter.Registry) error {
	if err := registry.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&RegistryDTO{}).
		Where("address = ? AND version = ?", registry.Address().Bytes(), registry.Version()).
		Updates(map[string]any{
			"next_id": int64(registry.Peek()),
			"version": registry.Version() + 1,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: registry version %d was overtaken",
			counter.ErrStaleCounterRead, registry.Version())
	}

	return nil
}
