package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRegisterOnce(t *testing.T) {
	require.Same(t, OutboundRequests(), OutboundRequests())
	require.Same(t, ArchiveExtractions(), ArchiveExtractions())
}

func TestWriteTextfile(t *testing.T) {
	ArchiveExtractions().WithLabelValues("ok").Inc()
	before := testutil.ToFloat64(ArchiveExtractions().WithLabelValues("ok"))
	require.GreaterOrEqual(t, before, 1.0)

	path := filepath.Join(t.TempDir(), "grader.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `gema_grader_archive_extractions_total{result="ok"}`)
}
