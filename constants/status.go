package constants

import "strings"

// ValidationStatus is the verdict attached to every processed document.
type ValidationStatus string

// Stable values (exported as-is in JSON, XLSX and the documents table).
const (
	StatusPassed  ValidationStatus = "PASSED"  // complete and consistent
	StatusPartial ValidationStatus = "PARTIAL" // usable, needs review
	StatusFailed  ValidationStatus = "FAILED"  // missing required data or unreadable
)

var allStatuses = []ValidationStatus{StatusPassed, StatusPartial, StatusFailed}

// ParseStatus accepts any casing; ok is false for unknown values.
func ParseStatus(s string) (ValidationStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range allStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Statuses returns the statuses in report order.
func Statuses() []ValidationStatus {
	out := make([]ValidationStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}
