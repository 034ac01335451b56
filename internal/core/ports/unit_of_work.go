package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents an atomic ledger commit boundary.
//
// Everything written between Begin and Commit becomes visible as one atomic
// transition: in particular, a creation pairs the counter registry bump with
// the order record insert, so no id is ever issued without a record and no
// partial write is observable.
type UnitOfWork interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// OrderRepository returns an OrderRepository bound to the current transaction.
	OrderRepository() OrderRepository

	// CounterRepository returns a CounterRepository bound to the current transaction.
	CounterRepository() CounterRepository
}
