// Package order implements the order record aggregate and its lifecycle state machine.
//
// An order record moves forward through exactly three states:
//
//	Created ──> Accepted ──> Completed
//
// The package enforces the protocol's core invariants: the courier is set exactly
// once on acceptance, lifecycle timestamps are set once and monotonically, and no
// transition ever regresses or skips a state. Committed transitions are described
// by a closed set of typed events (OrderCreated, OrderAccepted, OrderCompleted)
// with a tagged JSON wire envelope for transport across the event feed.
package order
