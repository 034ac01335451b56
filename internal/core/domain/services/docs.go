// Package services provides domain services that sit above individual aggregates.
//
// The package includes:
//   - TransitionAuthority: the stateless gate deciding whether an actor may
//     perform a requested lifecycle transition on an order record
//
// Every mutating operation consults the authority synchronously before writing;
// its denial is authoritative and no administrative path bypasses it.
package services
