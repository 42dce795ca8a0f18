// Package earnings holds the per-order earnings record and the windowed
// aggregates derived from the append-only record collection.
//
// Aggregates are never stored; they are recomputed from records filtered by a
// half-open calendar window. Pending payout is tracked separately by the ledger.
package earnings
