package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/gema-grader/internal/models"
)

// FileSaver stores a downloaded document and returns where it went.
type FileSaver interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// ExportFormat selects an export document type.
type ExportFormat struct {
	Path        string
	Extension   string
	ContentType string
	Operation   string
}

var (
	// ExportPDF exports a grading result as PDF.
	ExportPDF = ExportFormat{
		Path:        "/grading/download-pdf",
		Extension:   "pdf",
		ContentType: models.ContentTypePDF,
		Operation:   "downloading PDF",
	}
	// ExportDocx exports a grading result as a Word document.
	ExportDocx = ExportFormat{
		Path:        "/grading/download-docx",
		Extension:   "docx",
		ContentType: models.ContentTypeDocx,
		Operation:   "downloading DOCX",
	}
)

// ExportFileName is the name a result is saved under. Results without an id,
// such as migrated legacy feedback, drop the suffix.
func ExportFileName(result models.GradingResult, format ExportFormat) string {
	if id := strings.TrimSpace(result.ID); id != "" {
		return fmt.Sprintf("grading-result-%s.%s", id, format.Extension)
	}
	return "grading-result." + format.Extension
}

// ExportService downloads rendered grading reports.
type ExportService interface {
	DownloadPDF(ctx context.Context, result models.GradingResult) (string, error)
	DownloadDocx(ctx context.Context, result models.GradingResult) (string, error)
}

type exportService struct {
	gateway Gateway
	saver   FileSaver
	logger  zerolog.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(gw Gateway, saver FileSaver, logger zerolog.Logger) ExportService {
	return &exportService{
		gateway: gw,
		saver:   saver,
		logger:  logger.With().Str("component", "export_service").Logger(),
	}
}

func (s *exportService) DownloadPDF(ctx context.Context, result models.GradingResult) (string, error) {
	return s.download(ctx, result, ExportPDF)
}

func (s *exportService) DownloadDocx(ctx context.Context, result models.GradingResult) (string, error) {
	return s.download(ctx, result, ExportDocx)
}

func (s *exportService) download(ctx context.Context, result models.GradingResult, format ExportFormat) (string, error) {
	ctx, span := otel.Tracer("github.com/noah-isme/gema-grader/internal/service/export").Start(ctx, "export.download")
	defer span.End()
	span.SetAttributes(
		attribute.String("export.format", format.Extension),
		attribute.String("export.result_id", result.ID),
	)

	doc, err := s.gateway.FetchBinary(ctx, format.Operation, http.MethodPost, format.Path, result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request_failed")
		s.logger.Warn().Err(err).Str("format", format.Extension).Msg("export download failed")
		return "", err
	}

	if doc.Size == 0 {
		span.RecordError(ErrEmptyPayload)
		span.SetStatus(codes.Error, "empty_payload")
		s.logger.Warn().Str("format", format.Extension).Msg("export download returned no content")
		return "", ErrEmptyPayload
	}

	name := ExportFileName(result, format)
	path, err := s.saver.Save(ctx, name, format.ContentType, doc.Data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save_failed")
		s.logger.Warn().Err(err).Str("file", name).Msg("export save failed")
		return "", fmt.Errorf("save %s: %w", name, err)
	}

	span.SetStatus(codes.Ok, "saved")
	return path, nil
}
