package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDiskSaverWritesFile(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewDiskSaver(dir, zerolog.Nop())
	require.NoError(t, err)

	path, err := saver.Save(context.Background(), "grading-result-abc123.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "grading-result-abc123.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestDiskSaverRejectsTraversal(t *testing.T) {
	saver, err := NewDiskSaver(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	_, err = saver.Save(context.Background(), "../escape.pdf", "application/pdf", []byte("x"))
	require.ErrorIs(t, err, ErrInvalidName)
}
