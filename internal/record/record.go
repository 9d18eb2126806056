package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SupportedModelVersion is the only model_version the ledger accepts.
const SupportedModelVersion = "0.1"

// Top-level field names.
const (
	FieldModelVersion = "model_version"
	FieldRecordType   = "record_type"
	FieldRecordID     = "record_id"
	FieldTimeUTC      = "time_utc"
	FieldEntity       = "entity"
	FieldProject      = "project"
	FieldPrivacy      = "privacy"
	FieldLinks        = "links"
	FieldSupersedes   = "supersedes_record_ids"
)

// RequiredFields lists the mandatory top-level keys in reporting order.
var RequiredFields = []string{
	FieldModelVersion,
	FieldRecordType,
	FieldRecordID,
	FieldTimeUTC,
	FieldEntity,
	FieldProject,
	FieldPrivacy,
}

// Type is the record_type enum.
type Type string

const (
	TypeDecision   Type = "decision"
	TypeOutcome    Type = "outcome"
	TypeAssumption Type = "assumption"
	TypeConstraint Type = "constraint"
)

// Valid reports whether t is one of the four record types.
func (t Type) Valid() bool {
	switch t {
	case TypeDecision, TypeOutcome, TypeAssumption, TypeConstraint:
		return true
	}
	return false
}

// Project scopes a record. PartitionID is the isolation boundary.
type Project struct {
	ProjectID   string `json:"project_id"`
	PartitionID string `json:"partition_id"`
}

// Links holds outgoing references. DecisionRecordID is required on outcomes.
type Links struct {
	DecisionRecordID string `json:"decision_record_id,omitempty"`
}

// FieldError describes an optional field that is present but has the wrong
// JSON shape.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Record is a decoded ledger entry.
type Record struct {
	ModelVersion string
	Type         Type
	ID           string
	Project      Project
	Links        Links
	Supersedes   []string

	// IDIsString is false when record_id is present but not a JSON string.
	IDIsString bool

	// Source is the file the record was loaded from. It is not part of the
	// persisted record.
	Source string

	// Fields holds the raw top-level values keyed by name.
	Fields map[string]json.RawMessage

	// Malformed lists optional fields that could not be decoded.
	Malformed []FieldError

	data []byte
}

// Has reports whether the top-level field is present, even if null.
func (r *Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// Raw returns the raw JSON text of a top-level field, or "" if absent.
func (r *Record) Raw(field string) string {
	return string(r.Fields[field])
}

// JSON returns the file contents the record was decoded from.
func (r *Record) JSON() []byte {
	return r.data
}

// SupersedesSelf reports whether the record lists its own id as superseded.
func (r *Record) SupersedesSelf() bool {
	if !r.IDIsString {
		return false
	}
	for _, id := range r.Supersedes {
		if id == r.ID {
			return true
		}
	}
	return false
}

// Decode parses a JSON object into a Record. It fails only when data is not a
// JSON object; type problems in individual fields are recorded on the Record.
func Decode(data []byte, source string) (*Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode %s: not a JSON object", source)
	}

	r := &Record{
		Source: source,
		Fields: fields,
		data:   data,
	}

	r.ModelVersion, _ = stringField(fields, FieldModelVersion)

	if raw, ok := fields[FieldRecordType]; ok {
		if s, isString := decodeString(raw); isString {
			r.Type = Type(s)
		} else {
			r.Type = Type(bytes.TrimSpace(raw))
		}
	}

	if _, ok := fields[FieldRecordID]; ok {
		r.ID, r.IDIsString = stringField(fields, FieldRecordID)
	}

	r.Project = decodeProject(fields[FieldProject])
	r.decodeLinks()
	r.decodeSupersedes()

	return r, nil
}

func (r *Record) decodeLinks() {
	raw, ok := r.Fields[FieldLinks]
	if !ok || isNull(raw) {
		return
	}
	var links map[string]json.RawMessage
	if err := json.Unmarshal(raw, &links); err != nil {
		r.Malformed = append(r.Malformed, FieldError{Field: FieldLinks, Message: "must be an object"})
		return
	}
	target, ok := links["decision_record_id"]
	if !ok || isNull(target) {
		return
	}
	s, isString := decodeString(target)
	if !isString {
		r.Malformed = append(r.Malformed, FieldError{Field: FieldLinks + ".decision_record_id", Message: "must be a string"})
		return
	}
	r.Links.DecisionRecordID = s
}

func (r *Record) decodeSupersedes() {
	raw, ok := r.Fields[FieldSupersedes]
	if !ok || isNull(raw) {
		return
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		r.Malformed = append(r.Malformed, FieldError{Field: FieldSupersedes, Message: "must be an array of strings"})
		return
	}
	r.Supersedes = ids
}

func decodeProject(raw json.RawMessage) Project {
	var p Project
	if raw == nil {
		return p
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return p
	}
	p.ProjectID, _ = stringField(fields, "project_id")
	p.PartitionID, _ = stringField(fields, "partition_id")
	return p
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		return "", false
	}
	return decodeString(raw)
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || isNull(raw) {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
