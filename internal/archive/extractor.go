// Package archive unpacks the sample bundle served by the grading service.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/gema-grader/internal/models"
	"github.com/noah-isme/gema-grader/internal/observability"
)

const (
	AssignmentEntry = "sample_assignment.pdf"
	SolutionEntry   = "sample_solution.pdf"
	SubmissionEntry = "sample_submission.pdf"

	// DefaultMaxEntryBytes caps the decompressed size of a single entry.
	DefaultMaxEntryBytes int64 = 50 * 1024 * 1024
)

var (
	// ErrArchiveIncomplete indicates at least one expected entry is missing.
	ErrArchiveIncomplete = errors.New("one or more sample files not found in the zip archive")
	// ErrArchiveCorrupt indicates the archive or one of its entries is unreadable.
	ErrArchiveCorrupt = errors.New("sample archive could not be read")
)

var requiredEntries = []string{AssignmentEntry, SolutionEntry, SubmissionEntry}

// Extractor pulls the three sample documents out of a zip buffer.
type Extractor struct {
	maxEntryBytes int64
	logger        zerolog.Logger
}

// NewExtractor constructs an Extractor. A non-positive limit uses DefaultMaxEntryBytes.
func NewExtractor(maxEntryBytes int64, logger zerolog.Logger) *Extractor {
	if maxEntryBytes <= 0 {
		maxEntryBytes = DefaultMaxEntryBytes
	}
	return &Extractor{
		maxEntryBytes: maxEntryBytes,
		logger:        logger.With().Str("component", "archive_extractor").Logger(),
	}
}

// Extract returns all three sample files or an error; never a partial bundle.
// The returned files own their bytes, so data may be discarded afterwards.
func (e *Extractor) Extract(ctx context.Context, data []byte) (models.SampleFileBundle, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		observability.ArchiveExtractions().WithLabelValues("corrupt").Inc()
		return models.SampleFileBundle{}, fmt.Errorf("%w: %v", ErrArchiveCorrupt, err)
	}

	entries := make(map[string]*zip.File, len(requiredEntries))
	for _, f := range reader.File {
		if _, seen := entries[f.Name]; !seen {
			entries[f.Name] = f
		}
	}

	var missing []string
	for _, name := range requiredEntries {
		if _, ok := entries[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		observability.ArchiveExtractions().WithLabelValues("incomplete").Inc()
		e.logger.Warn().Strs("missing", missing).Int("entries", len(reader.File)).Msg("sample archive incomplete")
		return models.SampleFileBundle{}, fmt.Errorf("%w: missing %s", ErrArchiveIncomplete, strings.Join(missing, ", "))
	}

	files := make([]models.File, len(requiredEntries))
	group, ctx := errgroup.WithContext(ctx)
	for i, name := range requiredEntries {
		i, name := i, name
		entry := entries[name]
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := e.readEntry(entry)
			if err != nil {
				return err
			}
			files[i] = models.File{Name: name, ContentType: models.ContentTypePDF, Data: content}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		observability.ArchiveExtractions().WithLabelValues("corrupt").Inc()
		return models.SampleFileBundle{}, err
	}

	observability.ArchiveExtractions().WithLabelValues("ok").Inc()
	return models.SampleFileBundle{
		Assignment: files[0],
		Solution:   files[1],
		Submission: files[2],
	}, nil
}

func (e *Extractor) readEntry(entry *zip.File) ([]byte, error) {
	if entry.UncompressedSize64 > uint64(e.maxEntryBytes) {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrArchiveCorrupt, entry.Name, e.maxEntryBytes)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrArchiveCorrupt, entry.Name, err)
	}
	defer rc.Close()

	buf := bytes.NewBuffer(make([]byte, 0, entry.UncompressedSize64))
	if _, err := io.Copy(buf, io.LimitReader(rc, e.maxEntryBytes+1)); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrArchiveCorrupt, entry.Name, err)
	}
	if int64(buf.Len()) > e.maxEntryBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrArchiveCorrupt, entry.Name, e.maxEntryBytes)
	}

	return buf.Bytes(), nil
}
