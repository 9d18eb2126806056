// Package digest computes content digests for ledger records.
//
// Records are serialized as canonical JSON before hashing so that two files
// holding the same record produce the same digest regardless of key order,
// whitespace, or Unicode normalization form.
//
// Canonical form:
//   - Object keys sorted by UTF-16 code units
//   - Strings NFC normalized, no HTML escaping
//   - Numbers written as their literal JSON text
//   - No insignificant whitespace
package digest
