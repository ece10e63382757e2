package sink

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/crosstab/internal/tab"
)

// TextSink renders tables as aligned monospace text to a writer.
type TextSink struct {
	W io.Writer
}

// WriteTable renders one table, preceded by a stratum heading when set.
func (s *TextSink) WriteTable(_ context.Context, _ RunInfo, stratum string, table *tab.FormattedTable) error {
	if stratum != "" {
		if _, err := fmt.Fprintf(s.W, "%s = %s\n", table.RowVar+"/"+table.ColVar, stratum); err != nil {
			return err
		}
	}
	_, err := io.WriteString(s.W, Render(table))
	return err
}

// Render lays out a formatted table as aligned text. The first column
// holds row labels; column group hints, when present, become a parent
// header line spanning their columns.
func Render(t *tab.FormattedTable) string {
	cols := len(t.ColLabels)
	widths := make([]int, cols+1)

	widths[0] = len(t.RowVar)
	for _, label := range t.RowLabels {
		if len(label) > widths[0] {
			widths[0] = len(label)
		}
	}
	for j, label := range t.ColLabels {
		widths[j+1] = len(label)
		for i := range t.RowLabels {
			if n := len(t.Cells[i][j]); n > widths[j+1] {
				widths[j+1] = n
			}
		}
	}

	var b strings.Builder

	if len(t.ColGroups) > 0 {
		writeGroupHeader(&b, t, widths)
	}

	writeCell(&b, t.RowVar, widths[0])
	for j, label := range t.ColLabels {
		b.WriteString("  ")
		writeCell(&b, label, widths[j+1])
	}
	b.WriteByte('\n')

	for i, rowLabel := range t.RowLabels {
		writeCell(&b, rowLabel, widths[0])
		for j := range t.ColLabels {
			b.WriteString("  ")
			writeCell(&b, t.Cells[i][j], widths[j+1])
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// writeGroupHeader emits the parent header line for column group hints.
func writeGroupHeader(b *strings.Builder, t *tab.FormattedTable, widths []int) {
	writeCell(b, "", widths[0])
	col := 0
	for _, g := range t.ColGroups {
		span := 0
		for k := 0; k < g.Span && col+k < len(t.ColLabels); k++ {
			span += widths[col+1+k] + 2
		}
		col += g.Span
		b.WriteString("  ")
		writeCell(b, g.Label, span-2)
	}
	b.WriteByte('\n')
}

func writeCell(b *strings.Builder, s string, width int) {
	b.WriteString(s)
	for n := len(s); n < width; n++ {
		b.WriteByte(' ')
	}
}
