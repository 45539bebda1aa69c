package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/srlabs/srtopo/pkg/config"
	"github.com/srlabs/srtopo/pkg/topology"
)

const (
	// DefaultMaxConcurrency bounds parallel node fetches.
	DefaultMaxConcurrency = 8
	// DefaultTimeout bounds a single node fetch.
	DefaultTimeout = 30 * time.Second
)

// Fetcher retrieves one node's ISIS Segment Routing state from its
// management endpoint.
type Fetcher interface {
	FetchNode(ctx context.Context, node config.Node) (*topology.NodeRecord, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, node config.Node) (*topology.NodeRecord, error)

func (f FetcherFunc) FetchNode(ctx context.Context, node config.Node) (*topology.NodeRecord, error) {
	return f(ctx, node)
}

// Config holds collector configuration.
type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock

	// Fetcher is required for per-node collection, snapshot-only use can
	// leave it unset.
	Fetcher        Fetcher
	MaxConcurrency int
	Timeout        time.Duration

	// AllowPartial drops nodes whose fetch failed instead of aborting the
	// collection. At least one node must still succeed.
	AllowPartial bool
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}

	// Optional with defaults
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

// Collector fans fetches out over the configured nodes with bounded
// concurrency. Records land in node list order regardless of completion
// order, so repeated collections are comparable.
type Collector struct {
	cfg Config
}

// New creates a collector.
func New(cfg Config) (*Collector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Collector{cfg: cfg}, nil
}

// Collect fetches every configured node and returns one record per node
// that answered. Each fetch gets its own timeout so one stuck node cannot
// stall the whole collection.
func (c *Collector) Collect(ctx context.Context, nodes []config.Node) ([]topology.NodeRecord, error) {
	if c.cfg.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if len(nodes) == 0 {
		return nil, errors.New("no nodes to collect from")
	}
	log := c.cfg.Logger
	start := c.cfg.Clock.Now()

	results := make([]*topology.NodeRecord, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrency)

	for i, node := range nodes {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, c.cfg.Timeout)
			defer cancel()

			fetchStart := c.cfg.Clock.Now()
			rec, err := c.cfg.Fetcher.FetchNode(fctx, node)
			if err != nil {
				if c.cfg.AllowPartial {
					log.Warn("dropping node after failed fetch", "host", node.Host, "error", err)
					return nil
				}
				return fmt.Errorf("failed to fetch node %s: %w", node.Host, err)
			}
			log.Debug("fetched node", "host", node.Host, "system_id", rec.SystemID, "duration", c.cfg.Clock.Since(fetchStart))
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]topology.NodeRecord, 0, len(nodes))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	if len(records) == 0 {
		return nil, errors.New("all node fetches failed")
	}

	log.Info("collection complete", "nodes", len(records), "failed", len(nodes)-len(records), "duration", c.cfg.Clock.Since(start))
	return records, nil
}

// CollectSnapshot fetches the latest snapshot from src and parses it into
// node records, bypassing per-node fetches entirely.
func (c *Collector) CollectSnapshot(ctx context.Context, src Source) ([]topology.NodeRecord, error) {
	dump, err := src.FetchLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	c.cfg.Logger.Info("fetched snapshot", "file", dump.FileName, "bytes", len(dump.RawJSON))

	records, err := Parse(dump.RawJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", dump.FileName, err)
	}
	return records, nil
}

// SnapshotFetcher serves per-node records out of a parsed snapshot, keyed
// by management address. It lets the per-node collection path run against
// captured data.
type SnapshotFetcher struct {
	byHost map[string]topology.NodeRecord
}

// NewSnapshotFetcher indexes a snapshot's records by management address.
func NewSnapshotFetcher(records []topology.NodeRecord) *SnapshotFetcher {
	byHost := make(map[string]topology.NodeRecord, len(records))
	for _, rec := range records {
		byHost[rec.Host] = rec
	}
	return &SnapshotFetcher{byHost: byHost}
}

// FetchNode returns the snapshot record for the node's host.
func (s *SnapshotFetcher) FetchNode(ctx context.Context, node config.Node) (*topology.NodeRecord, error) {
	rec, ok := s.byHost[node.Host]
	if !ok {
		return nil, fmt.Errorf("host %s not present in snapshot", node.Host)
	}
	return &rec, nil
}
