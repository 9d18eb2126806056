package ledger

import "fmt"

// Kind is the failure category of a violation.
type Kind string

const (
	KindUsage              Kind = "UsageError"
	KindStructural         Kind = "StructuralError"
	KindReferential        Kind = "ReferentialError"
	KindPartitionIsolation Kind = "PartitionIsolationError"
	KindTypeMismatch       Kind = "TypeMismatchError"
	KindCycle              Kind = "CycleError"
)

// Violation codes (E200-E299)
const (
	// Structural (E201-E219)
	ErrCodeMissingFields      = "E201" // required top-level fields absent
	ErrCodeInvalidType        = "E202" // record_type not in enum
	ErrCodeInvalidID          = "E203" // record_id missing, empty or not a string
	ErrCodeDuplicateID        = "E204" // record_id seen earlier in the run
	ErrCodeMissingProject     = "E205" // project_id/partition_id empty
	ErrCodeUnsupportedVersion = "E206" // model_version mismatch
	ErrCodeSelfSupersession   = "E207" // record supersedes itself
	ErrCodeMalformedField     = "E208" // optional field has the wrong JSON type
	ErrCodeSchemaViolation    = "E209" // record fails the schema overlay
	ErrCodeSkippedFile        = "E210" // strict mode: candidate file is not a record
	ErrCodeMissingLink        = "E211" // outcome without links.decision_record_id

	// Outcome links (E220-E229)
	ErrCodeLinkTargetMissing  = "E220" // linked decision does not exist
	ErrCodeLinkNotDecision    = "E221" // linked record is not a decision
	ErrCodeLinkCrossPartition = "E222" // linked decision is in another partition

	// Supersession (E230-E249)
	ErrCodeSupersededMissing          = "E230" // superseded record does not exist
	ErrCodeSupersessionCrossPartition = "E231" // superseded record is in another partition
	ErrCodeSupersessionCycle          = "E240" // supersession graph has a cycle
)

// Error is a single ledger violation.
type Error struct {
	Kind     Kind     `json:"kind"`
	Code     string   `json:"code"`
	Source   string   `json:"source,omitempty"`
	RecordID string   `json:"record_id,omitempty"`
	Target   string   `json:"target,omitempty"`
	Path     []string `json:"path,omitempty"` // Cycle path: ["A", "C", "B", "A"]
	Message  string   `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
	return e.Message
}
