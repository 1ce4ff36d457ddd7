package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/gateway"
	"github.com/noah-isme/gema-grader/internal/models"
)

const (
	gradePath     = "/grading/grade-assignment"
	opGrade       = "grading assignment"
	tracerGrading = "github.com/noah-isme/gema-grader/internal/service/grading"
)

// Gateway is the subset of the request gateway used by the services.
type Gateway interface {
	SubmitMultipart(ctx context.Context, operation, path string, fields []gateway.Field) (json.RawMessage, error)
	SubmitJSON(ctx context.Context, operation, path string, body any) (json.RawMessage, error)
	FetchBinary(ctx context.Context, operation, method, path string, body any) (gateway.Binary, error)
}

// GradingService submits assignments for grading.
type GradingService interface {
	GradeAssignment(ctx context.Context, params dto.GradeRequestParams) (models.GradingResult, error)
}

type gradingService struct {
	gateway   Gateway
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradingService constructs a GradingService.
func NewGradingService(gw Gateway, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		gateway:   gw,
		validator: validate,
		logger:    logger.With().Str("component", "grading_service").Logger(),
	}
}

func (s *gradingService) GradeAssignment(ctx context.Context, params dto.GradeRequestParams) (models.GradingResult, error) {
	ctx, span := otel.Tracer(tracerGrading).Start(ctx, "grading.grade_assignment")
	defer span.End()
	span.SetAttributes(attribute.Bool("grading.include_advice", params.IncludeGradingAdvice))

	if err := s.validator.Struct(params); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return models.GradingResult{}, err
	}

	fields := []gateway.Field{
		gateway.TextField("api_key", params.APIKey),
		gateway.FileField("assignment", params.Assignment),
		gateway.FileField("solution", params.Solution),
		gateway.FileField("submission", params.Submission),
		gateway.TextField("include_grading_advice", strconv.FormatBool(params.IncludeGradingAdvice)),
	}
	if advice := strings.TrimSpace(params.GradingAdvice); params.IncludeGradingAdvice && advice != "" {
		fields = append(fields, gateway.TextField("grading_advice", params.GradingAdvice))
	}

	raw, err := s.gateway.SubmitMultipart(ctx, opGrade, gradePath, fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request_failed")
		s.logger.Warn().Err(err).Msg("grading request failed")
		return models.GradingResult{}, err
	}

	var result models.GradingResult
	if err := gateway.DecodePayload(opGrade, raw, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode_failed")
		s.logger.Warn().Err(err).Msg("grading response undecodable")
		return models.GradingResult{}, err
	}

	span.SetAttributes(
		attribute.String("grading.result_id", result.ID),
		attribute.Float64("grading.total_score", result.TotalScore),
	)
	span.SetStatus(codes.Ok, "graded")
	s.logger.Info().Str("result_id", result.ID).Float64("total_score", result.TotalScore).Msg("assignment graded")

	return result, nil
}
