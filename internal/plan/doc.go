// Package plan loads declarative tabulation plans: which variables to
// recode and how, which dimensions to cross-tabulate, and the margin,
// percentage, and formatting settings for the run.
//
// Plans are YAML, decoded strictly (unknown fields are typos, not
// extensions) and then validated against an embedded CUE schema before
// any semantic compilation happens.
package plan
