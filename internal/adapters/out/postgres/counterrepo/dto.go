// Package counterrepo persists the shared counter registry that issues order ids.
// The registry is a single versioned row; every save is a compare-and-swap on
// the version column so concurrent issuance attempts cannot both win.
package counterrepo

import (
	"blockdelivery/internal/core/domain/model/counter"
)

// RegistryDTO represents the database row backing the counter registry.
// Address is the registry's deterministic ledger address and serves as the
// primary key, keeping the table at exactly one row.
type RegistryDTO struct {
	Address []byte `gorm:"type:bytea;primaryKey"`
	NextID  int64
	Version int64
}

// TableName specifies the database table name for the counter registry.
func (RegistryDTO) TableName() string {
	return "counter_registry"
}

func fromDomain(registry *counter.Registry) RegistryDTO {
	return RegistryDTO{
		Address: registry.Address().Bytes(),
		NextID:  int64(registry.Peek()),
		Version: registry.Version(),
	}
}

func toDomain(dto RegistryDTO) (*counter.Registry, error) {
	return counter.RestoreRegistry(uint64(dto.NextID), dto.Version)
}
