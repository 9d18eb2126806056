package ledger

import "github.com/roach88/cdmledger/internal/record"

// Mode controls how many violations a run reports.
type Mode int

const (
	// ModeFailFast stops on the first violation.
	ModeFailFast Mode = iota
	// ModeCollectAll runs every stage and reports every violation found.
	ModeCollectAll
)

// RecordSchema validates a single record against external constraints.
type RecordSchema interface {
	Validate(rec *record.Record) error
}

// Options configures Check.
type Options struct {
	Mode Mode

	// ModelVersion is the version records must carry. Defaults to
	// record.SupportedModelVersion.
	ModelVersion string

	// Strict makes every loader skip a structural violation.
	Strict  bool
	Skipped []record.Skip

	// Schema is an optional overlay applied after the structural checks.
	Schema RecordSchema
}

// Result is the outcome of one run.
type Result struct {
	Records int      `json:"records"`
	Errors  []*Error `json:"errors,omitempty"`
}

// OK reports whether no violation was found.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// run is the state of a single validation run.
type run struct {
	opts    Options
	version string
	index   *Index
	errs    []*Error
}

// report records a violation and returns whether the run should continue.
func (r *run) report(err *Error) bool {
	r.errs = append(r.errs, err)
	return r.opts.Mode == ModeCollectAll
}

// Check runs every ledger check over records in pipeline order.
func Check(records []*record.Record, opts Options) *Result {
	version := opts.ModelVersion
	if version == "" {
		version = record.SupportedModelVersion
	}
	r := &run{
		opts:    opts,
		version: version,
		index:   NewIndex(records),
	}

	stages := []func([]*record.Record) bool{
		r.checkSkipped,
		r.checkStructure,
		r.checkSchema,
		r.checkOutcomeLinks,
		r.checkSupersession,
		r.checkCycles,
	}
	for _, stage := range stages {
		if !stage(records) {
			break
		}
	}

	return &Result{Records: len(records), Errors: r.errs}
}
