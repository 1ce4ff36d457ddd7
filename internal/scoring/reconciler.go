// Package scoring recomputes grading scores locally so that arithmetic drift
// between the grading service and its own deduction list can be surfaced.
package scoring

import (
	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/models"
)

// MaxScore is the score a submission starts from before deductions.
const MaxScore = 100.0

// Band is a coarse grade bucket used for display.
type Band string

const (
	BandExcellent    Band = "excellent"
	BandSatisfactory Band = "satisfactory"
	BandNeedsWork    Band = "needs work"
)

// Reconcile sums the deductions of result and compares MaxScore minus that sum
// with the reported total. The calculated score is not clamped at zero.
func Reconcile(result models.GradingResult) dto.ScoreCalculationResult {
	var total float64
	for _, deduction := range result.PointDeductions {
		total += deduction.Points
	}

	calculated := MaxScore - total
	return dto.ScoreCalculationResult{
		CalculatedScore: calculated,
		ReportedScore:   result.TotalScore,
		Discrepancy:     calculated != result.TotalScore,
		TotalDeductions: total,
	}
}

// DisplayedScore is the score shown to users. A reconciled score wins over the
// reported one; without a reconciliation the reported score is used.
func DisplayedScore(result models.GradingResult, calc *dto.ScoreCalculationResult) float64 {
	if calc != nil {
		return calc.CalculatedScore
	}
	return result.TotalScore
}

// BandFor buckets a score.
func BandFor(score float64) Band {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 70:
		return BandSatisfactory
	default:
		return BandNeedsWork
	}
}
