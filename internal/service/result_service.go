package service

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/models"
	"github.com/noah-isme/gema-grader/internal/repository"
	"github.com/noah-isme/gema-grader/internal/scoring"
)

// LastResultKey is the slot holding the most recent grading result.
const LastResultKey = "gradingResult"

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// ResultService persists the most recent grading result and reconciles it.
type ResultService interface {
	Save(ctx context.Context, result models.GradingResult) error
	Load(ctx context.Context) (models.GradingResult, error)
	Reconcile(ctx context.Context) (models.GradingResult, dto.ScoreCalculationResult, error)
}

type resultService struct {
	store     repository.ResultStore
	canonical *jsonschema.Schema
	legacy    *jsonschema.Schema
	logger    zerolog.Logger
}

// NewResultService constructs a ResultService on top of store.
func NewResultService(store repository.ResultStore, logger zerolog.Logger) (ResultService, error) {
	canonical, err := compileSchema("schemas/grading_result.schema.json")
	if err != nil {
		return nil, err
	}
	legacy, err := compileSchema("schemas/grading_feedback.schema.json")
	if err != nil {
		return nil, err
	}

	return &resultService{
		store:     store,
		canonical: canonical,
		legacy:    legacy,
		logger:    logger.With().Str("component", "result_service").Logger(),
	}, nil
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}

	url := "mem://gema-grader/" + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

func (s *resultService) Save(ctx context.Context, result models.GradingResult) error {
	payload, err := json.Marshal(withEmptyLists(result))
	if err != nil {
		return fmt.Errorf("encode grading result: %w", err)
	}
	doc, err := decodeDocument(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedStoredResult, err)
	}
	if err := s.canonical.Validate(doc); err != nil {
		s.logger.Warn().Err(err).Str("result_id", result.ID).Msg("refusing to persist invalid grading result")
		return fmt.Errorf("%w: %v", ErrMalformedStoredResult, err)
	}
	if err := s.store.Set(ctx, LastResultKey, string(payload)); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist grading result")
		return fmt.Errorf("persist grading result: %w", err)
	}
	return nil
}

// Load returns the stored result, migrating the legacy feedback shape.
func (s *resultService) Load(ctx context.Context) (models.GradingResult, error) {
	raw, ok, err := s.store.Get(ctx, LastResultKey)
	if err != nil {
		return models.GradingResult{}, fmt.Errorf("read grading result: %w", err)
	}
	if !ok {
		return models.GradingResult{}, ErrNoStoredResult
	}

	doc, err := decodeDocument([]byte(raw))
	if err != nil {
		s.logger.Warn().Err(err).Msg("stored grading result is not json")
		return models.GradingResult{}, fmt.Errorf("%w: %v", ErrMalformedStoredResult, err)
	}

	canonicalErr := s.canonical.Validate(doc)
	if canonicalErr == nil {
		var result models.GradingResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return models.GradingResult{}, fmt.Errorf("%w: %v", ErrMalformedStoredResult, err)
		}
		return result, nil
	}

	if s.legacy.Validate(doc) == nil {
		var feedback models.GradingFeedback
		if err := json.Unmarshal([]byte(raw), &feedback); err != nil {
			return models.GradingResult{}, fmt.Errorf("%w: %v", ErrMalformedStoredResult, err)
		}
		s.logger.Debug().Msg("migrated legacy grading feedback")
		return feedback.ToResult(""), nil
	}

	s.logger.Warn().Err(canonicalErr).Msg("stored grading result failed schema validation")
	return models.GradingResult{}, fmt.Errorf("%w: %v", ErrMalformedStoredResult, canonicalErr)
}

// decodeDocument yields the generic form the schema validator expects.
func decodeDocument(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// withEmptyLists keeps absent lists as [] so stored blobs pass schema checks.
func withEmptyLists(result models.GradingResult) models.GradingResult {
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.PointDeductions == nil {
		result.PointDeductions = []models.PointDeduction{}
	}
	if result.ConceptImprovements == nil {
		result.ConceptImprovements = []models.ConceptImprovement{}
	}
	return result
}

func (s *resultService) Reconcile(ctx context.Context) (models.GradingResult, dto.ScoreCalculationResult, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return models.GradingResult{}, dto.ScoreCalculationResult{}, err
	}

	calc := scoring.Reconcile(result)
	if calc.Discrepancy {
		s.logger.Warn().
			Str("result_id", result.ID).
			Float64("reported_score", calc.ReportedScore).
			Float64("calculated_score", calc.CalculatedScore).
			Msg("score discrepancy detected")
	}
	return result, calc, nil
}
