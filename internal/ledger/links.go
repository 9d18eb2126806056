package ledger

import (
	"fmt"

	"github.com/roach88/cdmledger/internal/record"
)

// checkOutcomeLinks verifies every outcome links to a decision in its own
// partition.
func (r *run) checkOutcomeLinks(records []*record.Record) bool {
	for _, rec := range records {
		if rec.Type != record.TypeOutcome {
			continue
		}
		if err := r.outcomeLinkViolation(rec); err != nil {
			if !r.report(err) {
				return false
			}
		}
	}
	return true
}

func (r *run) outcomeLinkViolation(rec *record.Record) *Error {
	target := rec.Links.DecisionRecordID
	if target == "" {
		return &Error{
			Kind:     KindStructural,
			Code:     ErrCodeMissingLink,
			Source:   sourceOf(rec),
			RecordID: rec.ID,
			Message:  "outcome missing links.decision_record_id",
		}
	}

	decision, ok := r.index.Lookup(target)
	if !ok {
		return linkError(rec, KindReferential, ErrCodeLinkTargetMissing, target,
			"outcome links to missing decision_record_id: %s", target)
	}
	if decision.Type != record.TypeDecision {
		return linkError(rec, KindTypeMismatch, ErrCodeLinkNotDecision, target,
			"linked decision_record_id is not a decision: %s (record_type %s)", target, decision.Type)
	}
	if decision.Project.PartitionID != rec.Project.PartitionID {
		return linkError(rec, KindPartitionIsolation, ErrCodeLinkCrossPartition, target,
			"outcome links across partitions (not allowed): %s is in partition %s, outcome is in %s",
			target, decision.Project.PartitionID, rec.Project.PartitionID)
	}
	return nil
}

// checkSupersession verifies every supersession target exists and shares the
// source's partition.
func (r *run) checkSupersession(records []*record.Record) bool {
	for _, rec := range records {
		for _, target := range rec.Supersedes {
			err := r.supersessionViolation(rec, target)
			if err == nil {
				continue
			}
			if !r.report(err) {
				return false
			}
		}
	}
	return true
}

func (r *run) supersessionViolation(rec *record.Record, target string) *Error {
	superseded, ok := r.index.Lookup(target)
	if !ok {
		return linkError(rec, KindReferential, ErrCodeSupersededMissing, target,
			"supersedes missing record_id: %s", target)
	}
	if superseded.Project.PartitionID != rec.Project.PartitionID {
		return linkError(rec, KindPartitionIsolation, ErrCodeSupersessionCrossPartition, target,
			"cross-partition supersession not allowed: %s is in partition %s, record is in %s",
			target, superseded.Project.PartitionID, rec.Project.PartitionID)
	}
	return nil
}

func linkError(rec *record.Record, kind Kind, code, target, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Code:     code,
		Source:   sourceOf(rec),
		RecordID: rec.ID,
		Target:   target,
		Message:  fmt.Sprintf(format, args...),
	}
}
