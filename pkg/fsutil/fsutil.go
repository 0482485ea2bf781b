// Package fsutil provides small filesystem helpers for the ingestion
// pipeline: CSV discovery, archive naming, and cross-device safe moves.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ArchiveMarker is embedded in archived filenames. Files already carrying
// it are never re-ingested.
const ArchiveMarker = "_processed_"

// ListCSVFiles returns the names of pending .csv files directly inside
// dir, excluding dotfiles and files already carrying the archive marker.
// A missing directory yields an empty list, not an error.
func ListCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}

	var files []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}

		if strings.Contains(name, ArchiveMarker) {
			continue
		}

		files = append(files, name)
	}

	sort.Strings(files)

	return files, nil
}

// ArchiveName builds a collision-resistant archive filename for the
// given source file: any prior archive marker suffix is stripped first so
// re-archiving does not stack markers, then a fresh timestamp is
// appended. Colons and dots in the timestamp are replaced by dashes.
func ArchiveName(fileName string, now time.Time) string {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if idx := strings.Index(stem, ArchiveMarker); idx >= 0 {
		stem = stem[:idx]
	}

	timestamp := now.UTC().Format(time.RFC3339Nano)
	timestamp = strings.NewReplacer(":", "-", ".", "-").Replace(timestamp)

	return stem + ArchiveMarker + timestamp + ".csv"
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}

	return nil
}

// MoveFile moves src to dst, creating dst's directory if needed. It
// falls back to copy+remove when rename fails (e.g. across devices). An
// existing dst is overwritten.
func MoveFile(src, dst string) error {
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %q: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()

		return fmt.Errorf("copying %q to %q: %w", src, dst, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", dst, err)
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing %q: %w", src, err)
	}

	return nil
}
