package validate

import (
	"fmt"
	"math"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// checkAmounts applies the amount rules. Each rule reports independently.
func checkAmounts(rec entity.NormalizedRecord) []entity.Violation {
	var out []entity.Violation
	add := func(f constants.Field, format string, args ...any) {
		out = append(out, entity.Violation{
			Category: entity.CategoryNumeric,
			Field:    f,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	total := rec.TotalAmount
	totalOK := total != nil && isFinite(*total)
	switch {
	case !totalOK:
		add(constants.FieldTotalAmount, "total_amount must be a valid number")
	case *total <= 0:
		add(constants.FieldTotalAmount, "total_amount must be positive, got: %s", entity.FormatAmount(*total))
	}

	tax := rec.TaxAmount
	taxOK := tax != nil && isFinite(*tax)
	if tax != nil {
		switch {
		case !taxOK:
			add(constants.FieldTaxAmount, "tax_amount must be a valid number")
		case *tax < 0:
			add(constants.FieldTaxAmount, "tax_amount must be non-negative, got: %s", entity.FormatAmount(*tax))
		}
	}

	if totalOK && taxOK && *total <= *tax {
		add(constants.FieldTotalAmount, "Total amount (%s) must be greater than tax amount (%s)",
			entity.FormatAmount(*total), entity.FormatAmount(*tax))
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
