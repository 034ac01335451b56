// Package kernel provides core domain primitives for the order lifecycle protocol.
// It implements fundamental building blocks following Domain-Driven Design principles
// that are used throughout the domain model.
//
// The package includes:
//   - Identity: A value object for opaque, comparable actor references (customer or courier)
//   - Address: A value object for deterministic record addresses in the ledger
//   - Address derivation: pure functions mapping ordered seed sequences to addresses
//
// These primitives enforce domain invariants and validation rules, ensuring that
// domain objects are always in a valid state. They are designed to be immutable
// and thread-safe, making them suitable for concurrent use.
package kernel
