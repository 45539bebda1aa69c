package graphstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/srlabs/srtopo/pkg/topology"
)

// StoreConfig holds configuration for the Store.
type StoreConfig struct {
	Logger *slog.Logger
	Neo4j  Client
}

func (cfg *StoreConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Neo4j == nil {
		return errors.New("neo4j client is required")
	}
	return nil
}

// Store manages the Neo4j representation of the reconstructed topology.
type Store struct {
	log *slog.Logger
	cfg StoreConfig
}

// NewStore creates a new Store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

// Sync replaces the Neo4j graph with the given topology. The clear and the
// batched creates run in a single write transaction, so readers see either
// the old topology or the new one, never a partial state.
func (s *Store) Sync(ctx context.Context, g *topology.Graph) error {
	nodes := g.Nodes()
	links := g.DirectedLinks()
	s.log.Debug("graphstore: starting sync", "nodes", len(nodes), "links", len(links))

	session, err := s.cfg.Neo4j.Session(ctx)
	if err != nil {
		return fmt.Errorf("failed to create Neo4j session: %w", err)
	}
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
		if err != nil {
			return nil, fmt.Errorf("failed to clear graph: %w", err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, fmt.Errorf("failed to consume clear result: %w", err)
		}

		if err := batchCreateRouters(ctx, tx, nodes); err != nil {
			return nil, fmt.Errorf("failed to create routers: %w", err)
		}
		if err := batchCreateAdjacencies(ctx, tx, links); err != nil {
			return nil, fmt.Errorf("failed to create adjacencies: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to sync graph: %w", err)
	}

	s.log.Info("graphstore: sync completed", "nodes", len(nodes), "links", len(links))
	return nil
}

// batchCreateRouters creates all Router nodes in a single batched query.
func batchCreateRouters(ctx context.Context, tx Transaction, nodes []*topology.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	items := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		items[i] = map[string]any{
			"system_id":  n.SystemID,
			"hostname":   n.Name,
			"host":       n.Host,
			"node_sid":   n.NodeSID,
			"srgb_base":  n.SRGB.Base,
			"srgb_range": n.SRGB.Size,
		}
	}

	cypher := `
		UNWIND $items AS item
		CREATE (r:Router {
			system_id: item.system_id,
			hostname: item.hostname,
			host: item.host,
			node_sid: item.node_sid,
			srgb_base: item.srgb_base,
			srgb_range: item.srgb_range
		})
	`
	res, err := tx.Run(ctx, cypher, map[string]any{"items": items})
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

// batchCreateAdjacencies creates all ISIS_ADJACENT relationships in a
// single batched query. Each directed link becomes its own relationship,
// parallel links included, so the stored graph matches the in-memory one.
func batchCreateAdjacencies(ctx context.Context, tx Transaction, links []*topology.Link) error {
	if len(links) == 0 {
		return nil
	}

	items := make([]map[string]any, len(links))
	for i, l := range links {
		items[i] = map[string]any{
			"id":              l.ID.String(),
			"local_system_id": l.Local.SystemID,
			"peer_system_id":  l.Peer.SystemID,
			"local_interface": l.LocalInterface,
			"peer_interface":  l.PeerInterface,
			"metric":          l.Metric,
			"adj_sid":         l.AdjSID,
		}
	}

	cypher := `
		UNWIND $items AS item
		MATCH (a:Router {system_id: item.local_system_id})
		MATCH (b:Router {system_id: item.peer_system_id})
		CREATE (a)-[:ISIS_ADJACENT {
			id: item.id,
			local_interface: item.local_interface,
			peer_interface: item.peer_interface,
			metric: item.metric,
			adj_sid: item.adj_sid
		}]->(b)
	`
	res, err := tx.Run(ctx, cypher, map[string]any{"items": items})
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}
