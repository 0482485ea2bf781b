package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCSVFiles(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		"b.csv",
		"a.CSV",
		".hidden.csv",
		"notes.txt",
		"old_processed_2024-01-01T00-00-00Z.csv",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.csv"), 0o755))

	files, err := ListCSVFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.CSV", "b.csv"}, files)
}

func TestListCSVFilesMissingDir(t *testing.T) {
	files, err := ListCSVFiles(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestArchiveName(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	name := ArchiveName("runs.csv", now)
	assert.Equal(t, "runs_processed_2024-03-15T10-30-00Z.csv", name)

	// No colons or dots outside the extension, so the name is safe on any
	// filesystem.
	assert.NotContains(t, name, ":")
	assert.Equal(t, ".csv", filepath.Ext(name))
}

func TestArchiveNameStripsPriorMarker(t *testing.T) {
	now := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)

	name := ArchiveName("runs_processed_2024-03-15T10-30-00Z.csv", now)
	assert.Equal(t, "runs_processed_2024-03-16T00-00-00Z.csv", name)
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.csv")
	dst := filepath.Join(dir, "nested", "dst.csv")

	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))
	require.NoError(t, MoveFile(src, dst))

	assert.NoFileExists(t, src)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestMoveFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.csv")
	dst := filepath.Join(dir, "dst.csv")

	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))
	require.NoError(t, MoveFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
