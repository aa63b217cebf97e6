// Package report summarizes validation outcomes over a batch.
package report

import (
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// Build aggregates records into a report. duplicates is the number of repeats found by
// deduplication, whether they were removed or only marked.
func Build(records []entity.DocumentRecord, duplicates int, now time.Time) entity.BatchReport {
	r := entity.BatchReport{
		TotalProcessed: len(records),
		Duplicates:     duplicates,
		ErrorDetails:   []entity.ErrorDetail{},
		GeneratedAt:    now.UTC(),
	}
	var scoreSum float64
	for _, d := range records {
		switch d.Validation.Status {
		case constants.StatusPassed:
			r.Passed++
		case constants.StatusPartial:
			r.Partial++
		default:
			r.Failed++
		}
		if len(d.Validation.MissingFields) > 0 {
			r.MissingFieldsCount++
		}
		if d.Validation.HasCategory(entity.CategoryDate) {
			r.DateErrorsCount++
		}
		if d.Validation.HasCategory(entity.CategoryNumeric) {
			r.NumericErrorsCount++
		}
		scoreSum += d.Validation.Score

		if detail, ok := errorDetail(d); ok {
			r.ErrorDetails = append(r.ErrorDetails, detail)
		}
	}
	if len(records) > 0 {
		r.AverageScore = scoreSum / float64(len(records))
	}
	return r
}

func errorDetail(d entity.DocumentRecord) (entity.ErrorDetail, bool) {
	if !d.Failed() && len(d.Validation.Violations) == 0 {
		return entity.ErrorDetail{}, false
	}
	var errs []string
	if d.Failed() {
		errs = append(errs, d.Error)
	}
	errs = append(errs, d.Validation.Errors()...)
	missing := d.Validation.MissingFields
	if missing == nil {
		missing = []string{}
	}
	return entity.ErrorDetail{
		SourceFileName: d.SourceFileName,
		DocumentID:     d.ID.String(),
		Errors:         errs,
		MissingFields:  missing,
	}, true
}
