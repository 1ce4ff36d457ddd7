package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/models"
)

func discrepantResult() models.GradingResult {
	return models.GradingResult{
		ID:                "abc123",
		OverallAssessment: "ok",
		Strengths:         []string{"a"},
		PointDeductions: []models.PointDeduction{
			{Area: "A", Points: 10, Reason: "r"},
			{Area: "B", Points: 15, Reason: "r"},
		},
		TotalScore: 80,
	}
}

func TestCalculateTotalScoreSendsFeedbackShape(t *testing.T) {
	var received map[string]any
	gw := newServerGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/grading/calculate-total-score", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calculated_score":75,"reported_score":80,"discrepancy":true,"total_deductions":25}`))
	})
	svc := NewScoreService(gw, testLogger())

	calc, err := svc.CalculateTotalScore(context.Background(), discrepantResult())
	require.NoError(t, err)
	require.Equal(t, dto.ScoreCalculationResult{
		CalculatedScore: 75,
		ReportedScore:   80,
		Discrepancy:     true,
		TotalDeductions: 25,
	}, calc)

	require.Equal(t, 80.0, received["numerical_grade"])
	require.Len(t, received["point_deductions"], 2)
	require.Equal(t, []any{}, received["concept_improvements"])
	_, hasTotal := received["total_score"]
	require.False(t, hasTotal)
}

func TestCrossCheckAgreesWithService(t *testing.T) {
	gw := newServerGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"calculated_score":75,"reported_score":80,"discrepancy":true,"total_deductions":25}`))
	})
	svc := NewScoreService(gw, testLogger())

	check := svc.CrossCheck(context.Background(), discrepantResult())
	require.NotNil(t, check.Remote)
	require.Empty(t, check.RemoteError)
	require.True(t, check.Agrees())
	require.True(t, check.Local.Discrepancy)
}

func TestCrossCheckReportsDisagreement(t *testing.T) {
	gw := newServerGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"calculated_score":70,"reported_score":80,"discrepancy":true,"total_deductions":30}`))
	})
	svc := NewScoreService(gw, testLogger())

	check := svc.CrossCheck(context.Background(), discrepantResult())
	require.NotNil(t, check.Remote)
	require.False(t, check.Agrees())
	require.Equal(t, 75.0, check.Local.CalculatedScore)
}

func TestCrossCheckFallsBackToLocalWhenServiceFails(t *testing.T) {
	gw := newServerGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"division by zero"}`))
	})
	svc := NewScoreService(gw, testLogger())

	check := svc.CrossCheck(context.Background(), discrepantResult())
	require.Nil(t, check.Remote)
	require.Equal(t, "division by zero", check.RemoteError)
	require.False(t, check.Agrees())
	require.Equal(t, dto.ScoreCalculationResult{
		CalculatedScore: 75,
		ReportedScore:   80,
		Discrepancy:     true,
		TotalDeductions: 25,
	}, check.Local)
}
