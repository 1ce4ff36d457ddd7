package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader/internal/models"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gw, err := New(Config{BaseURL: server.URL + "/api/"}, server.Client(), zerolog.Nop())
	require.NoError(t, err)
	return gw
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost"}, nil, zerolog.Nop())
	require.Error(t, err)
}

func TestSubmitMultipartSendsFieldsAndFiles(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/rubric/analyze", r.URL.Path)
		require.NotEmpty(t, r.Header.Get(RequestIDHeader))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "key-1", r.FormValue("api_key"))

		file, header, err := r.FormFile("assignment")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "hw.pdf", header.Filename)
		require.Equal(t, models.ContentTypePDF, header.Header.Get("Content-Type"))
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "%PDF-1.4", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"improvements":"x","advice":"y"}`))
	})

	raw, err := gw.SubmitMultipart(context.Background(), "analyzing rubric", "/rubric/analyze", []Field{
		TextField("api_key", "key-1"),
		FileField("assignment", models.NewFile("hw.pdf", models.ContentTypePDF, []byte("%PDF-1.4"))),
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"improvements":"x","advice":"y"}`, string(raw))
}

func TestSubmitJSONFailureUsesDetail(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "abc", body["id"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"invalid result"}`))
	})

	_, err := gw.SubmitJSON(context.Background(), "calculating score", "grading/calculate-total-score", map[string]string{"id": "abc"})
	require.ErrorIs(t, err, ErrRequestFailed)

	var failed *RequestFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, http.StatusBadRequest, failed.Status)
	require.Equal(t, "invalid result", failed.Message)
	require.Equal(t, "calculating score", failed.Operation)
}

func TestFetchBinarySuccess(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte{0x50, 0x4b, 0x03, 0x04})
	})

	bin, err := gw.FetchBinary(context.Background(), "loading sample files", "", "/grading/sample-files", nil)
	require.NoError(t, err)
	require.Equal(t, int64(4), bin.Size)
	require.Equal(t, "application/zip", bin.ContentType)
}

func TestFetchBinaryFailureDrainsBody(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad key"}`))
	})

	_, err := gw.FetchBinary(context.Background(), "downloading PDF", http.MethodPost, "/grading/download-pdf", map[string]string{"id": "abc123"})
	require.Error(t, err)
	require.Equal(t, "bad key", err.Error())
}

func TestNetworkFailureProducesGenericMessage(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	gw, err := New(Config{BaseURL: base}, nil, zerolog.Nop())
	require.NoError(t, err)

	_, err = gw.SubmitJSON(context.Background(), "grading assignment", "/grading/grade-assignment", map[string]string{})
	var failed *RequestFailedError
	require.ErrorAs(t, err, &failed)
	require.Zero(t, failed.Status)
	require.Equal(t, MessageUnexpected, failed.Message)
}

func TestDeadlineProducesCancelledMessage(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := gw.SubmitJSON(ctx, "calculating score", "/grading/calculate-total-score", map[string]string{})
	var failed *RequestFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, MessageCancelled, failed.Message)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubmitJSONUnencodableBodyIsTransportError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	})

	_, err := gw.SubmitJSON(context.Background(), "grading assignment", "/x", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "encode body")
}
