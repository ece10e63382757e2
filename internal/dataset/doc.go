// Package dataset defines the raw tabular data model consumed by the
// crosstab engine: typed raw values with an explicit missing marker,
// ordered records, and an adapter for CSV-shaped input collaborators.
//
// The engine core never reads files itself; FromCSV exists so callers
// with CSV-shaped data have a ready-made collaborator implementation.
package dataset
