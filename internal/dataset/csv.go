package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVOptions controls how CSV input is converted to a Dataset.
type CSVOptions struct {
	// MissingTokens are cell texts that decode to the missing marker.
	// The empty string is always treated as missing.
	MissingTokens []string

	// Numeric lists field names that should parse as Number.
	// Fields not listed decode as String. A numeric field whose cell
	// fails to parse decodes as the missing marker.
	Numeric []string
}

// FromCSV reads header-first CSV into a Dataset.
//
// Column names come from the header row, trimmed. Every data row must
// have the header's width; short or long rows are an error rather than
// silently realigned, since misaligned columns would corrupt every
// downstream count.
func FromCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	missing := make(map[string]bool, len(opts.MissingTokens)+1)
	missing[""] = true
	for _, tok := range opts.MissingTokens {
		missing[tok] = true
	}
	numeric := make(map[string]bool, len(opts.Numeric))
	for _, name := range opts.Numeric {
		numeric[name] = true
	}

	ds := &Dataset{}
	for row := 1; ; row++ {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", row, err)
		}
		if len(cells) != len(headers) {
			return nil, fmt.Errorf("CSV row %d: %d cells, header has %d", row, len(cells), len(headers))
		}

		fields := make([]Field, len(headers))
		for i, cell := range cells {
			fields[i] = Field{
				Name:  headers[i],
				Value: decodeCell(strings.TrimSpace(cell), missing, numeric[headers[i]]),
			}
		}
		ds.Records = append(ds.Records, NewRecord(fields...))
	}

	return ds, nil
}

func decodeCell(cell string, missing map[string]bool, numeric bool) Value {
	if missing[cell] {
		return Missing{}
	}
	if numeric {
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Missing{}
		}
		return Number(f)
	}
	return String(cell)
}
