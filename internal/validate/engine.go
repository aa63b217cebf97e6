// Package validate checks normalized records for completeness and consistency and scores them.
package validate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/policy"
)

type Engine struct {
	policy policy.Policy
	logger *slog.Logger
}

func New(p policy.Policy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{policy: p, logger: logger}
}

// Validate runs every rule against rec. It never fails; problems are reported in the result.
// Violations are ordered: dates, then amounts, then currency.
func (e *Engine) Validate(rec entity.NormalizedRecord) entity.ValidationResult {
	missing := e.MissingRequired(rec)

	var violations []entity.Violation
	violations = append(violations, checkDates(rec)...)
	violations = append(violations, checkAmounts(rec)...)
	if v, ok := e.checkCurrency(rec); !ok {
		violations = append(violations, v)
	}

	score := Score(rec, len(violations), len(missing), e.policy.Scoring)
	status := Status(score, len(violations), len(missing), e.policy.Scoring)

	e.logger.Debug("validate.done",
		"status", status,
		"score", score,
		"errors", len(violations),
		"missing", missing,
	)
	return entity.ValidationResult{
		MissingFields: missing,
		Violations:    violations,
		Score:         score,
		Status:        status,
	}
}

// MissingRequired lists the required fields that are absent or blank, in policy order.
func (e *Engine) MissingRequired(rec entity.NormalizedRecord) []string {
	var missing []string
	for _, f := range e.policy.RequiredFields {
		if !rec.Has(f) {
			missing = append(missing, string(f))
		}
	}
	return missing
}

func (e *Engine) checkCurrency(rec entity.NormalizedRecord) (entity.Violation, bool) {
	if !rec.Has(constants.FieldCurrency) {
		return entity.Violation{
			Category: entity.CategoryCurrency,
			Field:    constants.FieldCurrency,
			Message:  "Currency is required",
		}, false
	}
	code := strings.ToUpper(*rec.Currency)
	if !e.policy.AllowsCurrency(code) {
		return entity.Violation{
			Category: entity.CategoryCurrency,
			Field:    constants.FieldCurrency,
			Message: fmt.Sprintf("Invalid currency code: %s. Must be one of: %s",
				*rec.Currency, strings.Join(e.policy.Currencies, ", ")),
		}, false
	}
	return entity.Violation{}, true
}
