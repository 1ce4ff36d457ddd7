// Package gateway performs the outbound calls to the grading service and
// normalises every failure into a RequestFailedError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-grader/internal/models"
	"github.com/noah-isme/gema-grader/internal/observability"
)

// RequestIDHeader carries the per-call identifier.
const RequestIDHeader = "X-Request-ID"

// Config holds the gateway settings resolved at startup.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Field is one multipart form field, either text or a file.
type Field struct {
	Name  string
	Value string
	File  *models.File
}

// TextField builds a text form field.
func TextField(name, value string) Field {
	return Field{Name: name, Value: value}
}

// FileField builds a file form field.
func FileField(name string, file models.File) Field {
	return Field{Name: name, File: &file}
}

// Binary is an uninterpreted response body.
type Binary struct {
	Data        []byte
	Size        int64
	ContentType string
}

// Gateway talks to the grading service. It holds no per-call state and is
// safe for concurrent use.
type Gateway struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// New builds a gateway. A nil client gets an otelhttp-instrumented default
// using cfg.Timeout.
func New(cfg Config, client *http.Client, logger zerolog.Logger) (*Gateway, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", base)
	}

	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "gema-grader"
	}

	return &Gateway{
		baseURL:   strings.TrimRight(base, "/"),
		userAgent: userAgent,
		client:    client,
		logger:    logger.With().Str("component", "gateway").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-grader/internal/gateway"),
	}, nil
}

// BaseURL returns the address every path is resolved against.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// SubmitMultipart posts fields as multipart/form-data and returns the JSON payload.
func (g *Gateway) SubmitMultipart(ctx context.Context, operation, path string, fields []Field) (json.RawMessage, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, field := range fields {
		if err := writeField(writer, field); err != nil {
			return nil, failure(operation, transportOutcome(fmt.Errorf("encode field %s: %w", field.Name, err)))
		}
	}
	if err := writer.Close(); err != nil {
		return nil, failure(operation, transportOutcome(fmt.Errorf("encode form: %w", err)))
	}

	req, err := g.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, failure(operation, transportOutcome(err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return g.structured(ctx, operation, req)
}

// SubmitJSON posts body encoded as JSON and returns the JSON payload.
func (g *Gateway) SubmitJSON(ctx context.Context, operation, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, failure(operation, transportOutcome(fmt.Errorf("encode body: %w", err)))
	}

	req, err := g.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return nil, failure(operation, transportOutcome(err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return g.structured(ctx, operation, req)
}

// FetchBinary downloads an uninterpreted body. A nil body sends a GET without
// content; otherwise body is JSON-encoded and sent with method. Failure bodies
// are kept as bytes so the decoder can still read server details from them.
func (g *Gateway) FetchBinary(ctx context.Context, operation, method, path string, body any) (Binary, error) {
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Binary{}, failure(operation, transportOutcome(fmt.Errorf("encode body: %w", err)))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := g.newRequest(ctx, method, path, reader)
	if err != nil {
		return Binary{}, failure(operation, transportOutcome(err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "*/*")

	outcome := g.exchange(ctx, operation, req, true)
	if !outcome.OK() {
		return Binary{}, failure(operation, outcome)
	}

	return Binary{
		Data:        outcome.Body,
		Size:        int64(len(outcome.Body)),
		ContentType: outcome.ContentType,
	}, nil
}

func (g *Gateway) structured(ctx context.Context, operation string, req *http.Request) (json.RawMessage, error) {
	outcome := g.exchange(ctx, operation, req, false)
	if !outcome.OK() {
		return nil, failure(operation, outcome)
	}
	return json.RawMessage(outcome.Body), nil
}

func (g *Gateway) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target := g.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	return req, nil
}

// exchange performs exactly one round trip. No retries.
func (g *Gateway) exchange(ctx context.Context, operation string, req *http.Request, binary bool) Outcome {
	requestID := uuid.NewString()
	ctx, span := g.tracer.Start(ctx, "gateway.exchange", trace.WithAttributes(
		attribute.String("grader.operation", operation),
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.URL.Path),
		attribute.String("grader.request_id", requestID),
	))
	defer span.End()

	req = req.WithContext(ctx)
	req.Header.Set(RequestIDHeader, requestID)

	logger := g.logger.With().Str("operation", operation).Str("request_id", requestID).Logger()
	start := time.Now()
	defer func() {
		observability.OutboundLatency().WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	resp, err := g.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			observability.OutboundFailures().WithLabelValues(operation, OutcomeCancelled.String()).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "cancelled")
			logger.Debug().Err(err).Msg("grading request cancelled")
			return Outcome{Kind: OutcomeCancelled, Err: fmt.Errorf("%w: %v", ctxErr, err)}
		}
		observability.OutboundFailures().WithLabelValues(operation, OutcomeNetworkError.String()).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "network failure")
		logger.Debug().Err(err).Msg("grading service unreachable")
		return Outcome{Kind: OutcomeNetworkError, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.OutboundFailures().WithLabelValues(operation, OutcomeNetworkError.String()).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "body read failed")
		logger.Debug().Err(err).Int("status", resp.StatusCode).Msg("response body truncated")
		return Outcome{Kind: OutcomeNetworkError, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	observability.OutboundRequests().WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()
	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int("http.response_size", len(data)),
	)

	outcome := Outcome{
		Kind:        OutcomeOK,
		Status:      resp.StatusCode,
		StatusText:  statusText(resp),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
		BodyKind:    classifyBody(data, binary),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome.Kind = OutcomeHTTPError
		outcome.Err = errors.New(resp.Status)
		observability.OutboundFailures().WithLabelValues(operation, OutcomeHTTPError.String()).Inc()
		span.SetStatus(codes.Error, resp.Status)
		logger.Debug().Int("status", resp.StatusCode).Int("bytes", len(data)).Msg("grading service rejected request")
		return outcome
	}

	span.SetStatus(codes.Ok, "completed")
	logger.Debug().Int("status", resp.StatusCode).Int("bytes", len(data)).Dur("elapsed", time.Since(start)).Msg("grading service responded")
	return outcome
}

func classifyBody(data []byte, binary bool) BodyKind {
	switch {
	case binary:
		return BodyBinary
	case len(bytes.TrimSpace(data)) == 0:
		return BodyEmpty
	case gjson.ValidBytes(data):
		return BodyJSON
	default:
		return BodyText
	}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func transportOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeTransportError, Err: err}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeField(writer *multipart.Writer, field Field) error {
	if field.File == nil {
		return writer.WriteField(field.Name, field.Value)
	}

	contentType := field.File.ContentType
	if contentType == "" {
		contentType = models.ContentTypeOctetStream
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field.Name), quoteEscaper.Replace(field.File.Name)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(field.File.Data)
	return err
}
