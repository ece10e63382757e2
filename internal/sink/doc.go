// Package sink implements rendering/export collaborators that accept
// finished formatted tables: a plain-text renderer for terminals and a
// SQLite sink that persists tables per run for export consumers.
//
// Sinks receive display strings only. All counting, normalization, and
// rounding has already happened; a sink never reinterprets cell values.
package sink
