// Package commands contains business operations that modify ledger state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, authorization through
// the transition authority, transaction management, and persistence.
package commands

import (
	"context"

	"blockdelivery/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// CounterRepoFactory provides access to the counter repository within a transaction.
	CounterRepoFactory interface {
		CounterRepository() ports.CounterRepository
	}

	// OrderUoW manages transactions for order-only operations.
	// Used by the accept and complete transitions, which touch a single record.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// LedgerUoW manages transactions across the counter registry and order records.
	// Used by the create transition, which must pair identifier issuance with the
	// record insert in one atomic commit.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   registry, _ := uow.CounterRepository().GetOrCreate(ctx)
	//   id := registry.Issue()
	//   // ... create and add the record, save the registry
	//
	//   err = uow.Commit(ctx)
	LedgerUoW interface {
		TxManager
		OrderRepoFactory
		CounterRepoFactory
	}

	// LedgerUoWFactory creates new unit of work instances for cross-aggregate operations.
	LedgerUoWFactory interface {
		Create() LedgerUoW
	}
)
