package cli

import (
	"fmt"
	"os"

	"github.com/roach88/crosstab/internal/dataset"
	"github.com/roach88/crosstab/internal/plan"
)

// loadDataset reads the CSV input with the plan's decoding hints.
func loadDataset(p *plan.Plan, path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()
	return dataset.FromCSV(f, p.CSVOptions())
}
