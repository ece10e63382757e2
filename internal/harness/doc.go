// Package harness runs declarative conformance scenarios: a YAML file
// carrying an inline CSV dataset, a tabulation plan, and the expected
// tables. Scenarios execute through the same recode/tabulate pipeline as
// the CLI, with a fixed run token so output is deterministic.
//
// Two verification styles are supported: structured expectations
// (expected cells per stratum, expected failed strata) and golden-file
// comparison of the rendered text output via goldie.
package harness
