// Package domain defines the core domain types and interfaces.
//
// Observations, schedule slots, sentiment signals and recommendations live here together with the
// ports (history source, sentiment provider, recommendation cache) the application layer depends on.
// Beyond the contracts, slot.go holds the weekly-cycle arithmetic (Index, Distance, Next across DST).
package domain
