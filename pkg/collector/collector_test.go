package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlabs/srtopo/pkg/config"
	"github.com/srlabs/srtopo/pkg/sr"
	"github.com/srlabs/srtopo/pkg/topology"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testNodes(n int) []config.Node {
	nodes := make([]config.Node, n)
	for i := range nodes {
		nodes[i] = config.Node{Host: fmt.Sprintf("10.0.0.%d", i+1), User: "admin", Port: 830}
	}
	return nodes
}

func recordFor(node config.Node) *topology.NodeRecord {
	return &topology.NodeRecord{
		SystemID: "0100.0000.0001",
		Hostname: "sre1",
		Host:     node.Host,
		SRGB:     sr.SRGB{Base: 20000, Size: 8000},
	}
}

func TestCollector(t *testing.T) {
	t.Run("records keep node list order", func(t *testing.T) {
		c, err := New(Config{
			Logger: testLogger(),
			Fetcher: FetcherFunc(func(ctx context.Context, node config.Node) (*topology.NodeRecord, error) {
				return recordFor(node), nil
			}),
		})
		require.NoError(t, err)

		nodes := testNodes(5)
		records, err := c.Collect(context.Background(), nodes)
		require.NoError(t, err)
		require.Len(t, records, 5)
		for i, rec := range records {
			assert.Equal(t, nodes[i].Host, rec.Host)
		}
	})

	t.Run("concurrency stays within the limit", func(t *testing.T) {
		var inflight, peak int64
		var mu sync.Mutex
		c, err := New(Config{
			Logger:         testLogger(),
			MaxConcurrency: 2,
			Fetcher: FetcherFunc(func(ctx context.Context, node config.Node) (*topology.NodeRecord, error) {
				cur := atomic.AddInt64(&inflight, 1)
				mu.Lock()
				if cur > peak {
					peak = cur
				}
				mu.Unlock()
				defer atomic.AddInt64(&inflight, -1)
				return recordFor(node), nil
			}),
		})
		require.NoError(t, err)

		_, err = c.Collect(context.Background(), testNodes(10))
		require.NoError(t, err)
		assert.LessOrEqual(t, peak, int64(2))
	})

	t.Run("strict aborts on first failure", func(t *testing.T) {
		c, err := New(Config{
			Logger: testLogger(),
			Fetcher: FetcherFunc(func(ctx context.Context, node config.Node) (*topology.NodeRecord, error) {
				if node.Host == "10.0.0.2" {
					return nil, errors.New("connection refused")
				}
				return recordFor(node), nil
			}),
		})
		require.NoError(t, err)

		_, err = c.Collect(context.Background(), testNodes(3))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "10.0.0.2")
	})

	t.Run("partial drops failed nodes", func(t *testing.T) {
		c, err := New(Config{
			Logger:       testLogger(),
			AllowPartial: true,
			Fetcher: FetcherFunc(func(ctx context.Context, node config.Node) (*topology.NodeRecord, error) {
				if node.Host == "10.0.0.2" {
					return nil, errors.New("connection refused")
				}
				return recordFor(node), nil
			}),
		})
		require.NoError(t, err)

		records, err := c.Collect(context.Background(), testNodes(3))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "10.0.0.1", records[0].Host)
		assert.Equal(t, "10.0.0.3", records[1].Host)
	})

	t.Run("partial still fails when every node fails", func(t *testing.T) {
		c, err := New(Config{
			Logger:       testLogger(),
			AllowPartial: true,
			Fetcher: FetcherFunc(func(ctx context.Context, node config.Node) (*topology.NodeRecord, error) {
				return nil, errors.New("connection refused")
			}),
		})
		require.NoError(t, err)

		_, err = c.Collect(context.Background(), testNodes(3))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "all node fetches failed")
	})

	t.Run("no nodes", func(t *testing.T) {
		c, err := New(Config{
			Logger: testLogger(),
			Fetcher: FetcherFunc(func(ctx context.Context, node config.Node) (*topology.NodeRecord, error) {
				return recordFor(node), nil
			}),
		})
		require.NoError(t, err)

		_, err = c.Collect(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("missing fetcher", func(t *testing.T) {
		c, err := New(Config{Logger: testLogger()})
		require.NoError(t, err)

		_, err = c.Collect(context.Background(), testNodes(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetcher is required")
	})
}

func TestCollectSnapshot(t *testing.T) {
	t.Run("parses the fetched dump", func(t *testing.T) {
		c, err := New(Config{
			Logger:  testLogger(),
			Fetcher: NewSnapshotFetcher(nil),
		})
		require.NoError(t, err)

		src := NewMockSource([]byte(sampleSnapshot), "2026-08-23T10-00-00Z_snapshot.json")
		records, err := c.CollectSnapshot(context.Background(), src)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("empty snapshot surfaces the typed error", func(t *testing.T) {
		c, err := New(Config{Logger: testLogger()})
		require.NoError(t, err)

		src := NewMockSource(nil, "2026-08-23T10-00-00Z_snapshot.json")
		var ese *EmptySnapshotError
		_, err = c.CollectSnapshot(context.Background(), src)
		require.ErrorAs(t, err, &ese)
	})

	t.Run("source failure", func(t *testing.T) {
		c, err := New(Config{
			Logger:  testLogger(),
			Fetcher: NewSnapshotFetcher(nil),
		})
		require.NoError(t, err)

		src := &MockSource{FetchErr: errors.New("bucket unavailable")}
		_, err = c.CollectSnapshot(context.Background(), src)
		require.Error(t, err)
	})
}

func TestSnapshotFetcher(t *testing.T) {
	records, err := Parse([]byte(sampleSnapshot))
	require.NoError(t, err)
	f := NewSnapshotFetcher(records)

	rec, err := f.FetchNode(context.Background(), config.Node{Host: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "sre1", rec.Hostname)

	_, err = f.FetchNode(context.Background(), config.Node{Host: "10.0.0.9"})
	require.Error(t, err)
}
