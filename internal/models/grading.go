package models

// PointDeduction is a single rubric deduction reported by the grading service.
type PointDeduction struct {
	Area   string  `json:"area"`
	Points float64 `json:"points"`
	Reason string  `json:"reason"`
}

// ConceptImprovement suggests how a student can better grasp a concept.
type ConceptImprovement struct {
	Concept    string `json:"concept"`
	Suggestion string `json:"suggestion"`
}

// GradingResult is the canonical grading payload returned by the service.
// The ID is only used to name exported documents.
type GradingResult struct {
	ID                  string               `json:"id"`
	OverallAssessment   string               `json:"overall_assessment"`
	Strengths           []string             `json:"strengths"`
	PointDeductions     []PointDeduction     `json:"point_deductions"`
	ConceptImprovements []ConceptImprovement `json:"concept_improvements"`
	TotalScore          float64              `json:"total_score"`
}

// GradingFeedback is the earlier grading shape that carried numerical_grade
// and no identifier. It is still found in stored results.
type GradingFeedback struct {
	NumericalGrade      float64              `json:"numerical_grade"`
	OverallAssessment   string               `json:"overall_assessment"`
	Strengths           []string             `json:"strengths"`
	PointDeductions     []PointDeduction     `json:"point_deductions"`
	ConceptImprovements []ConceptImprovement `json:"concept_improvements"`
}

// ToResult converts legacy feedback into a GradingResult with the given id.
func (f GradingFeedback) ToResult(id string) GradingResult {
	return GradingResult{
		ID:                  id,
		OverallAssessment:   f.OverallAssessment,
		Strengths:           f.Strengths,
		PointDeductions:     f.PointDeductions,
		ConceptImprovements: f.ConceptImprovements,
		TotalScore:          f.NumericalGrade,
	}
}

// ToFeedback converts a result into the legacy feedback shape, which the
// score calculation endpoint still expects.
func (r GradingResult) ToFeedback() GradingFeedback {
	return GradingFeedback{
		NumericalGrade:      r.TotalScore,
		OverallAssessment:   r.OverallAssessment,
		Strengths:           r.Strengths,
		PointDeductions:     r.PointDeductions,
		ConceptImprovements: r.ConceptImprovements,
	}
}
