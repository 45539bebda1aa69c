package graphstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlabs/srtopo/pkg/sr"
	"github.com/srlabs/srtopo/pkg/topology"
)

type recordedQuery struct {
	cypher string
	params map[string]any
}

type fakeResult struct{}

func (f *fakeResult) Next(ctx context.Context) bool { return false }
func (f *fakeResult) Record() *neo4j.Record         { return nil }
func (f *fakeResult) Err() error                    { return nil }
func (f *fakeResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) {
	return nil, nil
}
func (f *fakeResult) Collect(ctx context.Context) ([]*neo4j.Record, error) { return nil, nil }
func (f *fakeResult) Single(ctx context.Context) (*neo4j.Record, error)    { return nil, nil }

type fakeTransaction struct {
	queries *[]recordedQuery
	failOn  string
}

func (f *fakeTransaction) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	if f.failOn != "" && strings.Contains(cypher, f.failOn) {
		return nil, errors.New("boom")
	}
	*f.queries = append(*f.queries, recordedQuery{cypher: cypher, params: params})
	return &fakeResult{}, nil
}

type fakeSession struct {
	queries *[]recordedQuery
	failOn  string
	closed  bool
}

func (f *fakeSession) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return (&fakeTransaction{queries: f.queries, failOn: f.failOn}).Run(ctx, cypher, params)
}

func (f *fakeSession) ExecuteRead(ctx context.Context, work TransactionWork) (any, error) {
	return work(&fakeTransaction{queries: f.queries, failOn: f.failOn})
}

func (f *fakeSession) ExecuteWrite(ctx context.Context, work TransactionWork) (any, error) {
	return work(&fakeTransaction{queries: f.queries, failOn: f.failOn})
}

func (f *fakeSession) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakeClient struct {
	queries []recordedQuery
	failOn  string
}

func (f *fakeClient) Session(ctx context.Context) (Session, error) {
	return &fakeSession{queries: &f.queries, failOn: f.failOn}, nil
}

func (f *fakeClient) Close(ctx context.Context) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGraph(t *testing.T) *topology.Graph {
	t.Helper()
	recs := []topology.NodeRecord{
		{
			SystemID: "0100.0000.0001", Hostname: "sre1", Host: "10.0.0.1",
			SRGB: sr.SRGB{Base: 20000, Size: 8000}, NodeSIDIndex: 1,
			Interfaces: []topology.InterfaceRecord{{
				Name: "et-0/0/0", HardwareAddr: "0c:00:00:01:02:00", Metric: 10,
				AdjSIDIndex: 120, AdjacencyUp: true,
				NeighborSystemID: "0100.0000.0002", NeighborHardwareAddr: "0c:00:00:02:01:00",
			}},
		},
		{
			SystemID: "0100.0000.0002", Hostname: "sre2", Host: "10.0.0.2",
			SRGB: sr.SRGB{Base: 20000, Size: 8000}, NodeSIDIndex: 2,
			Interfaces: []topology.InterfaceRecord{{
				Name: "et-0/0/0", HardwareAddr: "0c:00:00:02:01:00", Metric: 10,
				AdjSIDIndex: 210, AdjacencyUp: true,
				NeighborSystemID: "0100.0000.0001", NeighborHardwareAddr: "0c:00:00:01:02:00",
			}},
		},
	}
	g, err := topology.Build(recs, topology.BuildConfig{Logger: testLogger()})
	require.NoError(t, err)
	return g
}

func TestStoreSync(t *testing.T) {
	t.Run("clear then batched creates", func(t *testing.T) {
		client := &fakeClient{}
		store, err := NewStore(StoreConfig{Logger: testLogger(), Neo4j: client})
		require.NoError(t, err)

		require.NoError(t, store.Sync(context.Background(), testGraph(t)))
		require.Len(t, client.queries, 3)

		assert.Contains(t, client.queries[0].cypher, "DETACH DELETE")

		routers := client.queries[1]
		assert.Contains(t, routers.cypher, "CREATE (r:Router")
		items, ok := routers.params["items"].([]map[string]any)
		require.True(t, ok)
		require.Len(t, items, 2)
		assert.Equal(t, "0100.0000.0001", items[0]["system_id"])
		assert.Equal(t, "sre1", items[0]["hostname"])
		assert.Equal(t, uint32(20001), items[0]["node_sid"])

		adjs := client.queries[2]
		assert.Contains(t, adjs.cypher, "ISIS_ADJACENT")
		adjItems, ok := adjs.params["items"].([]map[string]any)
		require.True(t, ok)
		require.Len(t, adjItems, 2)
		for _, item := range adjItems {
			assert.NotEmpty(t, item["id"])
			assert.Equal(t, uint32(10), item["metric"])
			assert.Equal(t, "et-0/0/0", item["local_interface"])
		}
	})

	t.Run("create failure aborts the sync", func(t *testing.T) {
		client := &fakeClient{failOn: "Router"}
		store, err := NewStore(StoreConfig{Logger: testLogger(), Neo4j: client})
		require.NoError(t, err)

		err = store.Sync(context.Background(), testGraph(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create routers")
	})

	t.Run("missing client", func(t *testing.T) {
		_, err := NewStore(StoreConfig{Logger: testLogger()})
		require.Error(t, err)
	})
}
