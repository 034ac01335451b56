package ports

import (
	"context"

	"blockdelivery/internal/core/domain/model/counter"
)

// CounterRepository defines the persistence contract for the shared counter registry.
//
// The registry is a single versioned record; Save applies a compare-and-swap
// write conditioned on the version observed at read time. On conflict it
// returns counter.ErrStaleCounterRead, and the caller must re-read and retry
// issuance within a bounded budget.
type CounterRepository interface {
	// GetOrCreate reads the registry, initializing it at zero on first use.
	GetOrCreate(ctx context.Context) (*counter.Registry, error)

	// Save persists the registry, conditioned on its version being unchanged
	// since read. Returns counter.ErrStaleCounterRead if another issuance
	// committed first.
	Save(ctx context.Context, registry *counter.Registry) error
}
