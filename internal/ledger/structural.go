package ledger

import (
	"fmt"
	"strings"

	"github.com/roach88/cdmledger/internal/record"
)

// checkStructure enforces per-record field invariants in enumeration order.
// At most one violation is reported per record.
func (r *run) checkStructure(records []*record.Record) bool {
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if err := r.structuralViolation(rec, seen); err != nil {
			if !r.report(err) {
				return false
			}
		}
	}
	return true
}

func (r *run) structuralViolation(rec *record.Record, seen map[string]bool) *Error {
	var missing []string
	for _, field := range record.RequiredFields {
		if !rec.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return structural(rec, ErrCodeMissingFields, "missing required fields: %s", strings.Join(missing, ", "))
	}

	if !rec.Type.Valid() {
		return structural(rec, ErrCodeInvalidType, "invalid record_type: %s", rec.Type)
	}

	if !rec.IDIsString || strings.TrimSpace(rec.ID) == "" {
		return structural(rec, ErrCodeInvalidID, "invalid record_id: %s", rec.Raw(record.FieldRecordID))
	}
	if seen[rec.ID] {
		return structural(rec, ErrCodeDuplicateID, "duplicate record_id detected: %s", rec.ID)
	}
	seen[rec.ID] = true

	if rec.Project.ProjectID == "" || rec.Project.PartitionID == "" {
		return structural(rec, ErrCodeMissingProject, "missing project_id/partition_id")
	}

	if rec.ModelVersion != r.version {
		return structural(rec, ErrCodeUnsupportedVersion, "unsupported model_version: %s", rec.Raw(record.FieldModelVersion))
	}

	if rec.SupersedesSelf() {
		e := structural(rec, ErrCodeSelfSupersession, "record supersedes itself (circular)")
		e.Target = rec.ID
		return e
	}

	if len(rec.Malformed) > 0 {
		fe := rec.Malformed[0]
		return structural(rec, ErrCodeMalformedField, "invalid %s: %s", fe.Field, fe.Message)
	}

	return nil
}

// checkSkipped turns loader skips into violations in strict mode.
func (r *run) checkSkipped(_ []*record.Record) bool {
	if !r.opts.Strict {
		return true
	}
	for _, skip := range r.opts.Skipped {
		err := &Error{
			Kind:    KindStructural,
			Code:    ErrCodeSkippedFile,
			Source:  skip.Path,
			Message: fmt.Sprintf("file is not a loadable record: %s", skip.Reason),
		}
		if !r.report(err) {
			return false
		}
	}
	return true
}

// checkSchema applies the optional schema overlay to every record.
func (r *run) checkSchema(records []*record.Record) bool {
	if r.opts.Schema == nil {
		return true
	}
	for _, rec := range records {
		if err := r.opts.Schema.Validate(rec); err != nil {
			if !r.report(structural(rec, ErrCodeSchemaViolation, "schema violation: %v", err)) {
				return false
			}
		}
	}
	return true
}

func structural(rec *record.Record, code, format string, args ...any) *Error {
	return &Error{
		Kind:     KindStructural,
		Code:     code,
		Source:   sourceOf(rec),
		RecordID: rec.ID,
		Message:  fmt.Sprintf(format, args...),
	}
}

func sourceOf(rec *record.Record) string {
	if rec == nil || rec.Source == "" {
		return "<unknown>"
	}
	return rec.Source
}
