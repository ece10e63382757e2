// Package recode maps raw field values to labeled categories with an
// explicit, stable level ordering.
//
// Recoding happens exactly once per variable, before any matrix is built.
// The resulting Levels value is immutable and is threaded through
// tabulation, margining, and normalization as the single source of truth
// for row/column ordering - it is never re-derived downstream.
package recode
