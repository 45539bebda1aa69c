// Package collector gathers per-node ISIS Segment Routing state, either
// live from the managed nodes or from a previously captured domain snapshot.
package collector

import (
	"context"
	"fmt"
	"time"
)

// Dump is a raw domain snapshot fetched from a source. FileName is the
// object key or file name the snapshot came from, timestamp-prefixed for
// S3 objects.
type Dump struct {
	FetchedAt time.Time
	RawJSON   []byte
	FileName  string
}

// Empty reports whether the snapshot carries no data.
func (d *Dump) Empty() bool {
	return len(d.RawJSON) == 0
}

// EmptySnapshotError reports a snapshot that exists but holds no data,
// typically a capture cut off mid-upload.
type EmptySnapshotError struct {
	Name string
}

func (e *EmptySnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s is empty", e.Name)
}

// Source provides access to domain snapshots.
// Implementations exist for S3 and the local filesystem.
type Source interface {
	// FetchLatest retrieves the most recent domain snapshot.
	FetchLatest(ctx context.Context) (*Dump, error)

	// Close releases any resources held by the source.
	Close() error
}
