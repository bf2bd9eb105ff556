// Package grid defines the shared data model for the gridloom engine.
//
// The package is deliberately free of behavior beyond construction,
// copying, and equality: rows and columns are plain values that the
// state store owns and every other component receives copies of.
//
// CORE TYPES:
//
// Row is one data record plus reserved bookkeeping fields (ID, Index,
// Type). Rows are owned exclusively by the state store; accessors hand
// out deep copies so external mutation can never bypass dirty tracking
// or event emission.
//
// Column is an immutable field descriptor controlling display,
// editability, aggregation, cascades, and derived-value invalidation.
// Aggregates are resolved to a closed AggregateKind once at
// column-set time, never re-dispatched by string comparison per row.
//
// CellWriter is the narrow write capability handed to cascade
// callbacks. It is a distinct, smaller type than the store's public
// write surface, which structurally prevents cascades from re-entering
// batch updates or full data replacement.
package grid
