// Package record defines the CDM ledger record and the folder loader.
//
// A record is one JSON object per file. The loader keeps the raw top-level
// fields next to the typed view so that field presence can be checked apart
// from zero values. Nothing in this package rejects a record on semantic
// grounds; that is the ledger package's job.
//
// Key constraints:
//   - Only files whose model_version equals the supported version are records
//   - Enumeration is lexicographic by path so diagnostics are reproducible
//   - Unparsable files are skipped, never reported as errors
package record
