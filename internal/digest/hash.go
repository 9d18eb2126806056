package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/roach88/cdmledger/internal/record"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRecord = "cdm/record/v1"
	DomainLedger = "cdm/ledger/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Record returns the content digest of a single record file.
func Record(rec *record.Record) (string, error) {
	canonical, err := Canonicalize(rec.JSON())
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", rec.Source, err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// Ledger returns a digest over every record. It does not depend on file
// names or enumeration order: record digests are sorted before hashing.
func Ledger(records []*record.Record) (string, error) {
	hashes := make([]string, 0, len(records))
	for _, rec := range records {
		h, err := Record(rec)
		if err != nil {
			return "", err
		}
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	var data []byte
	for _, h := range hashes {
		data = append(data, h...)
		data = append(data, '\n')
	}
	return hashWithDomain(DomainLedger, data), nil
}
