package service

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader/internal/archive"
	"github.com/noah-isme/gema-grader/internal/models"
)

func zipOf(t *testing.T, names ...string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := zip.NewWriter(buf)
	for _, name := range names {
		w, err := writer.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("%PDF " + name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestLoadSampleFilesEndToEnd(t *testing.T) {
	payload := zipOf(t, archive.AssignmentEntry, archive.SolutionEntry, archive.SubmissionEntry)
	gw := newServerGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/grading/sample-files", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(payload)
	})
	svc := NewSampleService(gw, archive.NewExtractor(0, testLogger()), testLogger())

	bundle, err := svc.LoadSampleFiles(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, 3)
	for _, file := range bundle.Files() {
		require.Equal(t, models.ContentTypePDF, file.ContentType)
		require.Equal(t, "%PDF "+file.Name, string(file.Data))
		names = append(names, file.Name)
	}
	require.Equal(t, []string{"sample_assignment.pdf", "sample_solution.pdf", "sample_submission.pdf"}, names)
}

func TestLoadSampleFilesIncompleteArchive(t *testing.T) {
	payload := zipOf(t, archive.AssignmentEntry, archive.SubmissionEntry)
	gw := newServerGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})
	svc := NewSampleService(gw, archive.NewExtractor(0, testLogger()), testLogger())

	bundle, err := svc.LoadSampleFiles(context.Background())
	require.ErrorIs(t, err, archive.ErrArchiveIncomplete)
	require.Equal(t, models.SampleFileBundle{}, bundle)
	require.Equal(t, "One or more sample files not found in the zip archive.", Message(err))
}

func TestLoadSampleFilesBinaryErrorDetail(t *testing.T) {
	gw := newServerGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Sample files are not configured"}`))
	})
	svc := NewSampleService(gw, archive.NewExtractor(0, testLogger()), testLogger())

	_, err := svc.LoadSampleFiles(context.Background())
	require.Error(t, err)
	require.Equal(t, "Sample files are not configured", Message(err))
}

func TestLoadSampleFilesDoesNotExtractOnFailure(t *testing.T) {
	gw := &fakeGateway{err: context.DeadlineExceeded}
	extractor := &countingExtractor{}
	svc := NewSampleService(gw, extractor, testLogger())

	_, err := svc.LoadSampleFiles(context.Background())
	require.Error(t, err)
	require.Zero(t, extractor.calls)
}

type countingExtractor struct {
	calls int
}

func (c *countingExtractor) Extract(ctx context.Context, data []byte) (models.SampleFileBundle, error) {
	c.calls++
	return models.SampleFileBundle{}, nil
}
