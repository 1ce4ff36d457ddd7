package dto

import "github.com/noah-isme/gema-grader/internal/models"

// GradeRequestParams describes one grading submission.
type GradeRequestParams struct {
	APIKey               string      `form:"api_key" validate:"required"`
	IncludeGradingAdvice bool        `form:"include_grading_advice"`
	GradingAdvice        string      `form:"grading_advice" validate:"omitempty,max=20000"`
	Assignment           models.File `form:"assignment"`
	Solution             models.File `form:"solution"`
	Submission           models.File `form:"submission"`
}

// RubricRequestParams describes one rubric analysis submission.
type RubricRequestParams struct {
	APIKey     string      `form:"api_key" validate:"required"`
	Assignment models.File `form:"assignment"`
}

// ScoreCalculationResult compares the locally recomputed score with the one
// reported by the grading service.
type ScoreCalculationResult struct {
	CalculatedScore float64 `json:"calculated_score"`
	ReportedScore   float64 `json:"reported_score"`
	Discrepancy     bool    `json:"discrepancy"`
	TotalDeductions float64 `json:"total_deductions"`
}

// ScoreCheck pairs the local reconciliation with the figure computed by the
// grading service. Remote is nil when the service could not be asked.
type ScoreCheck struct {
	Local       ScoreCalculationResult  `json:"local"`
	Remote      *ScoreCalculationResult `json:"remote,omitempty"`
	RemoteError string                  `json:"remote_error,omitempty"`
}

// Agrees reports whether the service reached the same score and deductions.
func (c ScoreCheck) Agrees() bool {
	return c.Remote != nil &&
		c.Remote.CalculatedScore == c.Local.CalculatedScore &&
		c.Remote.TotalDeductions == c.Local.TotalDeductions
}
