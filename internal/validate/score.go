package validate

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/policy"
)

// Score is the completeness ratio over constants.ScoredFields minus the error and
// missing-required penalties, clamped to [0,1] and rounded half away from zero to two places.
// Only the error penalty is capped.
func Score(rec entity.NormalizedRecord, errors, missing int, s policy.Scoring) float64 {
	total := len(constants.ScoredFields)
	completeness := 0.0
	if total > 0 {
		completeness = float64(rec.FilledCount(constants.ScoredFields)) / float64(total)
	}
	penalty := math.Min(s.ErrorPenalty*float64(errors), s.ErrorPenaltyCap)
	score := completeness - penalty - s.MissingRequiredPenalty*float64(missing)
	score = math.Max(0, math.Min(1, score))
	return decimal.NewFromFloat(score).Round(2).InexactFloat64()
}

// Status is a strict decision tree: the first matching branch wins.
func Status(score float64, errors, missing int, s policy.Scoring) constants.ValidationStatus {
	switch {
	case missing > 0:
		return constants.StatusFailed
	case errors == 0 && score >= s.PassThreshold:
		return constants.StatusPassed
	case score >= s.PartialThreshold:
		return constants.StatusPartial
	default:
		return constants.StatusFailed
	}
}
