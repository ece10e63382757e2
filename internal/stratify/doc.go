// Package stratify partitions a dataset into independent sub-tables keyed
// by a stratification variable and drives the tabulation pipeline per
// partition.
//
// Strata share no mutable state beyond read-only level orders, so they
// run on a worker pool; results are reassembled in the stratification
// variable's level order regardless of completion order. A failure in one
// stratum never discards results computed for its siblings.
package stratify
