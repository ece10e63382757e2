package plan

import (
	"github.com/roach88/crosstab/internal/dataset"
	"github.com/roach88/crosstab/internal/recode"
	"github.com/roach88/crosstab/internal/stratify"
)

// Bound is a plan applied to a dataset: table variables recoded in
// place, the level order per dimension, and the run configuration. It is
// the handoff from plan loading to the engine.
type Bound struct {
	Data *dataset.Dataset
	Row  recode.Levels
	Col  recode.Levels

	// Strat is zero-valued when the plan declares no stratification.
	Strat recode.Levels

	Config stratify.Config
}

// Bind recodes every table dimension of the plan against the dataset.
// Recoded labels replace the raw column under the same variable name, so
// the tabulator only ever sees category labels. Under the own-category
// policy the reserved label is appended to each dimension's level order.
func (p *Plan) Bind(ds *dataset.Dataset) (*Bound, error) {
	out := &Bound{Data: ds, Config: p.Config()}
	reserved := p.ReservedLabel()

	dims := []struct {
		name   string
		levels *recode.Levels
	}{
		{p.Table.Row, &out.Row},
		{p.Table.Col, &out.Col},
		{p.Table.Strat, &out.Strat},
	}

	for _, dim := range dims {
		if dim.name == "" {
			continue
		}
		spec, ok := p.Variable(dim.name)
		if !ok {
			return nil, planErrf(ErrCodeBadVariable, "variable %q has no recoding declaration", dim.name)
		}
		rules, policy, opts, err := spec.Compile()
		if err != nil {
			return nil, err
		}
		res, err := recode.Recode(dim.name, out.Data.Column(dim.name), rules, policy, opts)
		if err != nil {
			return nil, err
		}
		levels := res.Levels
		if reserved != "" {
			levels, err = levels.WithReserved(reserved)
			if err != nil {
				return nil, err
			}
		}
		out.Data = out.Data.WithColumn(dim.name, res.Values())
		*dim.levels = levels
	}

	return out, nil
}
