// Package analytics computes currency-normalized, city-partitioned market
// reports over a short-term-rental snapshot. It is the aggregation and
// ranking core of staypulse: four raw relations (listings, hosts, reviews,
// exchange rates) go in, eight ranked, tie-broken, null-safe summary tables
// come out.
//
// # Architecture
//
// The package is organized around five small components:
//
//  1. Converter: per-row local-price to USD conversion via a city rate table
//  2. Grouping helpers: generic multi-key grouping and null-aware means
//  3. Ranker: dense rank and partitioned row-number with deterministic ties
//  4. Tier split: two-phase threshold-then-reclassify bucketing
//  5. Engine: assembles the fixed report shapes from the components above
//
// # Usage
//
//	prep, err := analytics.Prepare(snapshot, logger)
//	if err != nil {
//	    return err // structurally invalid snapshot
//	}
//	engine := analytics.NewEngine(logger)
//	report, err := engine.Run(ctx, prep)
//
// Individual reports are also available as typed query functions:
//
//	ranks := engine.CityPriceRanks(prep)
//	tiers := engine.PriceTierScoresByCity(prep)
//
// # Data Flow
//
//	Snapshot → Prepare (validate, join, convert) → per-report aggregation →
//	rank / tier split → report rows
//
// # Error Handling
//
// Only a structurally invalid snapshot is a hard failure, surfaced by
// Prepare before any aggregation begins. Everything else is local: a city
// without an exchange rate excludes its listings from USD aggregates, a
// null score is excluded from that metric's mean, an empty group resolves
// to the configured sentinel, and a dangling foreign key drops the row.
// All such conditions are counted in RunStats and logged, never raised.
//
// # Concurrency
//
// The snapshot is immutable for the lifetime of a run, so the reports are
// mutually independent and Run computes them in parallel. The package
// holds no mutable process-wide state between runs.
package analytics
