package ledger

import "github.com/roach88/cdmledger/internal/record"

// Index maps record_id to record and remembers first-insertion order.
//
// A later record with an already-indexed id replaces the earlier one but keeps
// its position. The index never rejects input; duplicates are reported by the
// structural check.
type Index struct {
	byID  map[string]*record.Record
	order []string
}

// NewIndex builds an index over records in enumeration order. Records whose
// record_id is not a string are not indexed.
func NewIndex(records []*record.Record) *Index {
	ix := &Index{byID: make(map[string]*record.Record, len(records))}
	for _, r := range records {
		if !r.IDIsString {
			continue
		}
		if _, seen := ix.byID[r.ID]; !seen {
			ix.order = append(ix.order, r.ID)
		}
		ix.byID[r.ID] = r
	}
	return ix
}

// Lookup returns the record indexed under id.
func (ix *Index) Lookup(id string) (*record.Record, bool) {
	r, ok := ix.byID[id]
	return r, ok
}

// IDs returns indexed ids in insertion order.
func (ix *Index) IDs() []string {
	return ix.order
}

// Len returns the number of distinct ids.
func (ix *Index) Len() int {
	return len(ix.order)
}
