package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader/internal/models"
)

const (
	samplePath = "/grading/sample-files"
	opSamples  = "loading sample files"
)

// ArchiveExtractor unpacks the sample bundle.
type ArchiveExtractor interface {
	Extract(ctx context.Context, data []byte) (models.SampleFileBundle, error)
}

// SampleService downloads the sample assignment, solution and submission.
type SampleService interface {
	LoadSampleFiles(ctx context.Context) (models.SampleFileBundle, error)
}

type sampleService struct {
	gateway   Gateway
	extractor ArchiveExtractor
	logger    zerolog.Logger
}

// NewSampleService constructs a SampleService.
func NewSampleService(gw Gateway, extractor ArchiveExtractor, logger zerolog.Logger) SampleService {
	return &sampleService{
		gateway:   gw,
		extractor: extractor,
		logger:    logger.With().Str("component", "sample_service").Logger(),
	}
}

func (s *sampleService) LoadSampleFiles(ctx context.Context) (models.SampleFileBundle, error) {
	archive, err := s.gateway.FetchBinary(ctx, opSamples, http.MethodGet, samplePath, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("sample download failed")
		return models.SampleFileBundle{}, err
	}

	bundle, err := s.extractor.Extract(ctx, archive.Data)
	if err != nil {
		s.logger.Warn().Err(err).Int64("archive_bytes", archive.Size).Msg("sample archive rejected")
		return models.SampleFileBundle{}, err
	}

	return bundle, nil
}
