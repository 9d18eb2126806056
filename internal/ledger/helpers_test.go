package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cdmledger/internal/record"
)

type recordOption func(map[string]any)

func supersedes(ids ...string) recordOption {
	return func(m map[string]any) { m[record.FieldSupersedes] = ids }
}

func linksTo(id string) recordOption {
	return func(m map[string]any) { m[record.FieldLinks] = map[string]any{"decision_record_id": id} }
}

func without(field string) recordOption {
	return func(m map[string]any) { delete(m, field) }
}

func with(field string, v any) recordOption {
	return func(m map[string]any) { m[field] = v }
}

// newRecord builds a valid record in partition and applies opts. The source
// is "<id>.json".
func newRecord(t *testing.T, id string, typ record.Type, partition string, opts ...recordOption) *record.Record {
	t.Helper()
	m := map[string]any{
		record.FieldModelVersion: record.SupportedModelVersion,
		record.FieldRecordType:   string(typ),
		record.FieldRecordID:     id,
		record.FieldTimeUTC:      "2025-01-01T00:00:00Z",
		record.FieldEntity:       map[string]any{"kind": "team"},
		record.FieldProject:      map[string]any{"project_id": "proj", "partition_id": partition},
		record.FieldPrivacy:      map[string]any{"level": "internal"},
	}
	for _, opt := range opts {
		opt(m)
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	rec, err := record.Decode(data, id+".json")
	require.NoError(t, err)
	return rec
}

func decision(t *testing.T, id, partition string, opts ...recordOption) *record.Record {
	t.Helper()
	return newRecord(t, id, record.TypeDecision, partition, opts...)
}

// chainABC is the valid chain B → A, C → B in partition P1.
func chainABC(t *testing.T) []*record.Record {
	t.Helper()
	return []*record.Record{
		decision(t, "A", "P1"),
		decision(t, "B", "P1", supersedes("A")),
		decision(t, "C", "P1", supersedes("B")),
	}
}

// requireSingleError asserts a fail-fast result with one violation and
// returns it.
func requireSingleError(t *testing.T, result *Result) *Error {
	t.Helper()
	require.False(t, result.OK(), "expected a violation")
	require.Len(t, result.Errors, 1)
	return result.Errors[0]
}
