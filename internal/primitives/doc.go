// Package primitives provides the foundational data structures for the vending
// controller: products, inventory bookkeeping, modes, operations, events and
// the catalog configuration a Machine is built from.
//
// Core invariants:
//   - Products are immutable once created
//   - Inventory keys are fixed at construction; only quantities change
//   - Quantities never go below zero
//
// Nothing in this package is safe for concurrent mutation on its own. The
// owning Machine in internal/core serializes access.
package primitives
