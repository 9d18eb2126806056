// Package ledger checks cross-record invariants of a loaded CDM ledger.
//
// The checks run as a strictly ordered pipeline over an index built once per
// run:
//
//  1. Structural: required fields, enum values, unique ids, no self-supersession
//  2. Schema overlay (optional): external per-record constraints
//  3. Outcome links: target exists, is a decision, shares the partition
//  4. Supersession partitions: targets exist and share the partition
//  5. Cycles: the supersession graph is acyclic
//
// Later stages rely on earlier ones. The cycle detector, for example, skips
// edges to unknown ids because stage 4 has already rejected them.
//
// All state lives on a per-run value; Check is safe to call concurrently on
// distinct inputs.
package ledger
