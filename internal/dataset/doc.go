// Package dataset loads the four input relations of a staypulse analysis
// run from CSV files and materializes them as an immutable snapshot. It is
// the ingestion collaborator of the analytics core: column presence is
// checked here and a missing required column is a hard failure, while
// per-row oddities (empty keys, null scores) are preserved for the core's
// own null handling rather than repaired on load.
package dataset
