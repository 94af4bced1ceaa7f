// Package schedule implements the schedule optimization engine.
//
// Aggregate buckets engagement history into weekly (day, hour) slots with recency-weighted statistics,
// Score fuses those statistics with a normalized sentiment weight, and Select picks the top spaced
// slots. Engine composes the three. Everything here is pure: no I/O, no shared state, safe for
// concurrent use on shared read-only inputs.
package schedule
