package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentRecord is the pipeline's output for one input document.
type DocumentRecord struct {
	ID               uuid.UUID
	SourceFileName   string
	SourcePath       string
	ContentHash      string
	ProcessedAt      time.Time
	PageCount        int
	TextBased        bool
	ExtractionMethod string

	Fields     NormalizedRecord
	Validation ValidationResult

	// Error is set when the document could not be processed; Validation is then FAILED with score 0.
	Error string

	Fingerprint string
	IsDuplicate bool
}

// Failed reports whether processing short-circuited with a pipeline error.
func (d DocumentRecord) Failed() bool { return d.Error != "" }
