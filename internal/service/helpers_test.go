package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader/internal/gateway"
	"github.com/noah-isme/gema-grader/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type multipartCall struct {
	operation string
	path      string
	fields    []gateway.Field
}

type fakeGateway struct {
	multipartCalls []multipartCall
	response       json.RawMessage
	binary         gateway.Binary
	err            error
}

func (f *fakeGateway) SubmitMultipart(ctx context.Context, operation, path string, fields []gateway.Field) (json.RawMessage, error) {
	f.multipartCalls = append(f.multipartCalls, multipartCall{operation: operation, path: path, fields: fields})
	return f.response, f.err
}

func (f *fakeGateway) SubmitJSON(ctx context.Context, operation, path string, body any) (json.RawMessage, error) {
	return f.response, f.err
}

func (f *fakeGateway) FetchBinary(ctx context.Context, operation, method, path string, body any) (gateway.Binary, error) {
	return f.binary, f.err
}

func fieldMap(fields []gateway.Field) map[string]gateway.Field {
	out := make(map[string]gateway.Field, len(fields))
	for _, field := range fields {
		out[field.Name] = field
	}
	return out
}

func pdf(name string) models.File {
	return models.NewFile(name, models.ContentTypePDF, []byte("%PDF-1.7 "+name))
}

func newServerGateway(t *testing.T, handler http.HandlerFunc) *gateway.Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gw, err := gateway.New(gateway.Config{BaseURL: server.URL + "/api"}, server.Client(), testLogger())
	require.NoError(t, err)
	return gw
}
