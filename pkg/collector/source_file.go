package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileSource implements Source against a local snapshot file.
type FileSource struct {
	path string
}

// NewFileSource creates a source serving the snapshot at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FetchLatest reads the snapshot file.
func (f *FileSource) FetchLatest(ctx context.Context) (*Dump, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	if len(data) == 0 {
		return nil, &EmptySnapshotError{Name: filepath.Base(f.path)}
	}
	return &Dump{
		FetchedAt: time.Now(),
		RawJSON:   data,
		FileName:  filepath.Base(f.path),
	}, nil
}

// Close releases resources. For FileSource, this is a no-op.
func (f *FileSource) Close() error {
	return nil
}
