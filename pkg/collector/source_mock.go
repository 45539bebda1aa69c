package collector

import (
	"context"
	"errors"
	"time"
)

// MockSource serves a canned snapshot for testing, recording fetch and
// close calls.
type MockSource struct {
	Dump     *Dump
	FetchErr error
	Fetches  int
	Closed   bool
}

// NewMockSource creates a new MockSource with the given snapshot data.
func NewMockSource(rawJSON []byte, fileName string) *MockSource {
	return &MockSource{
		Dump: &Dump{
			FetchedAt: time.Now(),
			RawJSON:   rawJSON,
			FileName:  fileName,
		},
	}
}

// FetchLatest returns the configured dump or error, applying the same
// empty-snapshot guard as the real sources.
func (m *MockSource) FetchLatest(ctx context.Context) (*Dump, error) {
	if m.Closed {
		return nil, errors.New("source is closed")
	}
	m.Fetches++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if m.Dump == nil || m.Dump.Empty() {
		name := "mock"
		if m.Dump != nil {
			name = m.Dump.FileName
		}
		return nil, &EmptySnapshotError{Name: name}
	}
	return m.Dump, nil
}

// Close marks the source as closed.
func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}
