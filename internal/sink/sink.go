package sink

import (
	"context"

	"github.com/roach88/crosstab/internal/tab"
)

// RunInfo identifies the tabulation run a table belongs to.
type RunInfo struct {
	Token string // run token from the stratifier
	Plan  string // plan name, for browsing persisted runs
}

// Sink accepts finished formatted tables. stratum is "" for
// unstratified runs.
type Sink interface {
	WriteTable(ctx context.Context, run RunInfo, stratum string, table *tab.FormattedTable) error
}
