// Package counter implements the shared counter registry that issues globally
// unique, monotonically increasing order identifiers.
//
// The registry is a single versioned record living at a deterministic ledger
// address. Every successful order creation issues exactly one identifier and
// bumps the registry; persistence conditions the write on the version being
// unchanged since read (compare-and-swap), so two creations racing against the
// same registry snapshot can never both succeed with the same id.
package counter

import (
	"errors"

	"blockdelivery/internal/core/domain/model/kernel"
)

var (
	// ErrRegistryIsNotConstructed is returned when a Registry instance was not
	// created through NewRegistry or RestoreRegistry.
	ErrRegistryIsNotConstructed = errors.New("Registry must be created via NewRegistry or RestoreRegistry")

	// ErrStaleCounterRead is returned when a compare-and-swap write of the
	// registry fails because another creation committed first. The caller must
	// re-read the registry and retry issuance with the fresh value.
	ErrStaleCounterRead = errors.New("counter registry changed since read")

	// ErrIssuanceExhausted is returned when issuance keeps losing the
	// compare-and-swap race beyond the configured retry budget.
	ErrIssuanceExhausted = errors.New("identifier issuance retry budget exhausted")
)

// Registry is the aggregate for the single shared order-id counter.
//
// Invariants:
//   - nextID starts at 0 and increases by exactly one per successful issuance
//   - version increases by exactly one per committed write, enabling
//     compare-and-swap persistence
//   - no two successful issuances observe the same pre-increment value
type Registry struct {
	address kernel.Address
	nextID  uint64
	version int64

	isConstructed bool
}

// NewRegistry creates the registry in its initial state, used exactly once
// when the record does not yet exist in the ledger.
func NewRegistry() (*Registry, error) {
	address, err := kernel.DeriveCounterAddress()
	if err != nil {
		return nil, err
	}

	return &Registry{
		address:       address,
		nextID:        0,
		version:       0,
		isConstructed: true,
	}, nil
}

// RestoreRegistry reconstructs the registry from persistence.
func RestoreRegistry(nextID uint64, version int64) (*Registry, error) {
	address, err := kernel.DeriveCounterAddress()
	if err != nil {
		return nil, err
	}

	return &Registry{
		address:       address,
		nextID:        nextID,
		version:       version,
		isConstructed: true,
	}, nil
}

// Validate ensures the Registry was properly constructed.
func (r *Registry) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRegistryIsNotConstructed
	}
	return nil
}

// Address returns the registry record's deterministic ledger address.
func (r *Registry) Address() kernel.Address {
	return r.address
}

// Peek returns the value the next issuance would produce, without mutating.
func (r *Registry) Peek() uint64 {
	return r.nextID
}

// Version returns the registry's current persistence version.
// The versioned write is what turns concurrent issuance into a detectable
// ErrStaleCounterRead instead of a silent duplicate id.
func (r *Registry) Version() int64 {
	return r.version
}

// Issue returns the next identifier and advances the counter.
// The returned value is the pre-increment counter value; the caller must
// persist the registry in the same transaction that creates the order record,
// so no id is ever issued without a record and no record created with a stale id.
func (r *Registry) Issue() uint64 {
	issued := r.nextID
	r.nextID++
	return issued
}
