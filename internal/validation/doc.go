// Package validation implements the instrument database validation engine.
//
// A validation run is a pure function of two inputs: an immutable
// dataset snapshot (internal/dataset) and a categorization schema that
// assigns every dataset column one of five roles (instrument, item id,
// metadata, classification, other). The engine partitions the rows into
// instruments keyed by the instrument columns, runs a fixed battery of
// checks over the partition, and assembles a single report:
//
//  1. Pre-validation: identification columns (instrument + item id) must
//     have no missing values. Failure is terminal for the run.
//  2. Duplicate check: item ids must be unique within an instrument.
//     The same id appearing in two instruments is expected (anchor items).
//  3. Metadata completeness: metadata columns must be fully populated.
//  4. Classification profile: per-instrument unique-value counts;
//     gaps produce warnings, not errors.
//  5. Advanced constraints (opt-in): user-configured item counts and
//     key-variable cardinality/value-set checks, scoped globally or to a
//     single instrument.
//
// Check findings are data, not Go errors: a run that discovers problems
// still completes with a report whose results carry the violations. The
// engine holds no state between runs and is safe for concurrent use.
package validation
