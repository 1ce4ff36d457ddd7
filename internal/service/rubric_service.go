package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/gateway"
	"github.com/noah-isme/gema-grader/internal/models"
)

const (
	rubricPath = "/rubric/analyze"
	opRubric   = "analyzing rubric"
)

// RubricService asks the grading service to review an assignment rubric.
type RubricService interface {
	AnalyzeRubric(ctx context.Context, apiKey string, assignment models.File) (models.RubricAnalysisResult, error)
}

type rubricService struct {
	gateway   Gateway
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRubricService constructs a RubricService.
func NewRubricService(gw Gateway, validate *validator.Validate, logger zerolog.Logger) RubricService {
	return &rubricService{
		gateway:   gw,
		validator: validate,
		logger:    logger.With().Str("component", "rubric_service").Logger(),
	}
}

func (s *rubricService) AnalyzeRubric(ctx context.Context, apiKey string, assignment models.File) (models.RubricAnalysisResult, error) {
	params := dto.RubricRequestParams{APIKey: apiKey, Assignment: assignment}
	if err := s.validator.Struct(params); err != nil {
		return models.RubricAnalysisResult{}, err
	}

	raw, err := s.gateway.SubmitMultipart(ctx, opRubric, rubricPath, []gateway.Field{
		gateway.TextField("api_key", params.APIKey),
		gateway.FileField("assignment", params.Assignment),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("rubric analysis failed")
		return models.RubricAnalysisResult{}, err
	}

	var result models.RubricAnalysisResult
	if err := gateway.DecodePayload(opRubric, raw, &result); err != nil {
		s.logger.Warn().Err(err).Msg("rubric response undecodable")
		return models.RubricAnalysisResult{}, err
	}

	return result, nil
}
