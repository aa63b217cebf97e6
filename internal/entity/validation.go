package entity

import (
	"github.com/joseph-ayodele/docextract/constants"
)

// ViolationCategory groups validation messages for reporting.
type ViolationCategory string

const (
	CategoryDate     ViolationCategory = "date"
	CategoryNumeric  ViolationCategory = "numeric"
	CategoryCurrency ViolationCategory = "currency"
)

// Violation is one failed consistency rule.
type Violation struct {
	Category ViolationCategory `json:"category"`
	Field    constants.Field   `json:"field"`
	Message  string            `json:"message"`
}

// ValidationResult is computed once per record and never mutated afterwards.
type ValidationResult struct {
	MissingFields []string                   `json:"missing_fields"`
	Violations    []Violation                `json:"violations"`
	Score         float64                    `json:"validation_score"`
	Status        constants.ValidationStatus `json:"validation_status"`
}

// Errors returns the violation messages in the order they were found.
func (v ValidationResult) Errors() []string {
	out := make([]string, len(v.Violations))
	for i, vi := range v.Violations {
		out[i] = vi.Message
	}
	return out
}

func (v ValidationResult) HasCategory(c ViolationCategory) bool {
	for _, vi := range v.Violations {
		if vi.Category == c {
			return true
		}
	}
	return false
}
