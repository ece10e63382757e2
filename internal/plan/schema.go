package plan

import (
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

// planSchema is the CUE schema every plan document must satisfy.
// Definitions are closed, so a field the schema does not declare is a
// validation error.
const planSchema = `
#Plan: {
	name: string & !=""
	dataset?: #Dataset
	variables: [...#Variable] & [_, ...]
	table: #Table
}

#Dataset: {
	missing_tokens?: [...string]
	numeric?: [...string]
}

#Variable: {
	name: string & !=""
	rules: [...#Rule] & [_, ...]
	on_unmapped?: "error" | "drop" | "label"
	unmapped_label?: string
	level_order?: [...string]
}

#Rule: {
	label: string & !=""
	equals?: string
	range?: {
		lo: number
		hi: number
	}
	missing?: true
}

#Table: {
	row: string & !=""
	col: string & !=""
	strat?: string
	margins?: [...("row" | "col")]
	pct_axis?: "row" | "col" | "cell" | "none"
	digits?: int & >=0
	show_counts?: bool
	missing_policy?: "exclude" | "own_category"
	missing_label?: string
}
`

// validateSchema checks the raw plan document against #Plan using the
// CUE Go API directly (not a CLI subprocess). The raw YAML is validated
// rather than the decoded struct so schema errors point at what the user
// actually wrote.
func validateSchema(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(planSchema)
	if err := schema.Err(); err != nil {
		return planErrf(ErrCodeGeneric, "compile plan schema: %v", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Plan"))
	if !def.Exists() {
		return planErrf(ErrCodeGeneric, "plan schema has no #Plan definition")
	}

	file, err := cueyaml.Extract("plan.yaml", data)
	if err != nil {
		return planErrf(ErrCodeParseFailed, "extract plan YAML: %v", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return planErrf(ErrCodeParseFailed, "build plan document: %v", err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(false)); err != nil {
		msgs := make([]string, 0, 4)
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return planErrf(ErrCodeSchemaFailed, "plan schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
