// Package tab implements the cross-tabulation pipeline: counting records
// into a contingency matrix, appending margin totals, converting counts to
// percentages along a chosen axis, and rendering cells for presentation.
//
// Each stage takes and returns its own value - no stage mutates a
// structure it does not own - so every stage is unit-testable in
// isolation and re-running a stage with different settings never
// accumulates state from a previous run.
//
// Row and column ordering always comes from pre-declared level orders
// produced by the recode package. Ordering is never re-derived here.
package tab
