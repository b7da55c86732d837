package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"journeyd/internal/journey"
)

// FileSystemArchiver writes snapshots as JSON files in a directory tree:
//
//	<root>/
//	  <journeyID>/
//	    <capturedAt>.json
//
// Snapshots are append-only; nothing here ever overwrites or removes one.
type FileSystemArchiver struct {
	root string
}

// NewFileSystemArchiver creates a filesystem archiver rooted at the given path.
func NewFileSystemArchiver(root string) (*FileSystemArchiver, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileSystemArchiver{root: root}, nil
}

// Record writes one snapshot file. The write is atomic (temp file + rename)
// so a crash never leaves a truncated snapshot behind.
func (a *FileSystemArchiver) Record(ctx context.Context, id string, capturedAt time.Time, doc *journey.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding snapshot for journey %s: %w", id, err)
	}

	dir := filepath.Join(a.root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create journey archive directory: %w", err)
	}

	destPath := filepath.Join(dir, snapshotName(capturedAt))

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(body); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// snapshotName renders the capture time as a filename-safe UTC timestamp.
// Nanosecond precision keeps rapid successive saves from colliding.
func snapshotName(t time.Time) string {
	return t.UTC().Format("20060102T150405.000000000Z") + ".json"
}

// Compile-time check that FileSystemArchiver implements journey.Archiver
var _ journey.Archiver = (*FileSystemArchiver)(nil)
