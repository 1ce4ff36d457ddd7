package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/gateway"
	"github.com/noah-isme/gema-grader/internal/models"
	"github.com/noah-isme/gema-grader/internal/scoring"
)

const (
	calculateScorePath = "/grading/calculate-total-score"
	opCalculateScore   = "calculating score"
)

// ScoreService asks the grading service to recompute a score and compares
// it with the local reconciliation.
type ScoreService interface {
	CalculateTotalScore(ctx context.Context, result models.GradingResult) (dto.ScoreCalculationResult, error)
	CrossCheck(ctx context.Context, result models.GradingResult) dto.ScoreCheck
}

type scoreService struct {
	gateway Gateway
	logger  zerolog.Logger
}

// NewScoreService constructs a ScoreService.
func NewScoreService(gw Gateway, logger zerolog.Logger) ScoreService {
	return &scoreService{
		gateway: gw,
		logger:  logger.With().Str("component", "score_service").Logger(),
	}
}

func (s *scoreService) CalculateTotalScore(ctx context.Context, result models.GradingResult) (dto.ScoreCalculationResult, error) {
	ctx, span := otel.Tracer("github.com/noah-isme/gema-grader/internal/service/score").Start(ctx, "score.calculate_total")
	defer span.End()
	span.SetAttributes(attribute.String("grading.result_id", result.ID))

	raw, err := s.gateway.SubmitJSON(ctx, opCalculateScore, calculateScorePath, withEmptyLists(result).ToFeedback())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request_failed")
		return dto.ScoreCalculationResult{}, err
	}

	var calc dto.ScoreCalculationResult
	if err := gateway.DecodePayload(opCalculateScore, raw, &calc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode_failed")
		return dto.ScoreCalculationResult{}, err
	}

	span.SetStatus(codes.Ok, "calculated")
	return calc, nil
}

// CrossCheck never fails: the local reconciliation is always present and the
// service's figure is added when it can be fetched.
func (s *scoreService) CrossCheck(ctx context.Context, result models.GradingResult) dto.ScoreCheck {
	check := dto.ScoreCheck{Local: scoring.Reconcile(result)}

	remote, err := s.CalculateTotalScore(ctx, result)
	if err != nil {
		s.logger.Warn().Err(err).Str("result_id", result.ID).Msg("server score check unavailable, using local calculation")
		check.RemoteError = Message(err)
		return check
	}
	check.Remote = &remote

	if !check.Agrees() {
		s.logger.Warn().
			Str("result_id", result.ID).
			Float64("local_score", check.Local.CalculatedScore).
			Float64("remote_score", remote.CalculatedScore).
			Msg("server and local score calculations differ")
	}
	return check
}
