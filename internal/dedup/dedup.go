// Package dedup drops or flags repeated submissions of the same document within a batch.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// keyFields make up the fingerprint, in this order.
var keyFields = []constants.Field{
	constants.FieldInvoiceNumber,
	constants.FieldVendorName,
	constants.FieldTotalAmount,
	constants.FieldIssueDate,
}

// Fingerprint hashes the key fields of rec. Absent fields are skipped, so two records
// with no key fields at all share the fingerprint of the empty string.
func Fingerprint(rec entity.NormalizedRecord) string {
	parts := make([]string, 0, len(keyFields))
	for _, f := range keyFields {
		v, ok := rec.Get(f)
		if !ok {
			continue
		}
		parts = append(parts, strings.ToLower(strings.TrimSpace(v.String())))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// HasKey reports whether rec carries at least one fingerprint field.
func HasKey(rec entity.NormalizedRecord) bool {
	for _, f := range keyFields {
		if _, ok := rec.Get(f); ok {
			return true
		}
	}
	return false
}

type Option func(*Deduplicator)

// WithSkipEmpty treats records without any key field as always unique.
func WithSkipEmpty(skip bool) Option {
	return func(d *Deduplicator) { d.skipEmpty = skip }
}

type Deduplicator struct {
	skipEmpty bool
	logger    *slog.Logger
}

func New(logger *slog.Logger, opts ...Option) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Deduplicator{logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Partition splits records into first occurrences and repeats. Both keep input order.
func (d *Deduplicator) Partition(records []entity.DocumentRecord) (unique, duplicates []entity.DocumentRecord) {
	for _, r := range d.Mark(records) {
		if r.IsDuplicate {
			duplicates = append(duplicates, r)
		} else {
			unique = append(unique, r)
		}
	}
	return unique, duplicates
}

// Mark returns a copy of records with Fingerprint and IsDuplicate filled in.
// The first record of each fingerprint wins.
func (d *Deduplicator) Mark(records []entity.DocumentRecord) []entity.DocumentRecord {
	out := make([]entity.DocumentRecord, len(records))
	seen := make(map[string]string, len(records)) // fingerprint -> first document id
	dups := 0
	for i, r := range records {
		r.Fingerprint = Fingerprint(r.Fields)
		r.IsDuplicate = false
		if d.skipEmpty && !HasKey(r.Fields) {
			out[i] = r
			continue
		}
		if first, ok := seen[r.Fingerprint]; ok {
			r.IsDuplicate = true
			dups++
			d.logger.Info("dedup.duplicate",
				"document_id", r.ID.String(),
				"source", r.SourceFileName,
				"first_document_id", first,
			)
		} else {
			seen[r.Fingerprint] = r.ID.String()
		}
		out[i] = r
	}
	d.logger.Debug("dedup.done", "records", len(records), "duplicates", dups)
	return out
}
