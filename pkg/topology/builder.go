package topology

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Policy selects how the builder reacts to per-node correlation failures.
type Policy int

const (
	// PolicyStrict aborts the whole build on the first failure.
	PolicyStrict Policy = iota
	// PolicyDegraded drops unresolvable adjacencies with a warning and
	// returns the partial graph.
	PolicyDegraded
)

func (p Policy) String() string {
	if p == PolicyDegraded {
		return "degraded"
	}
	return "strict"
}

// BuildConfig holds configuration for a topology build.
type BuildConfig struct {
	Logger *slog.Logger
	Policy Policy
}

func (c *BuildConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// localIface is an InterfaceRecord with its addresses normalized once.
type localIface struct {
	rec  InterfaceRecord
	hw   string // normalized hardware address, empty if absent
	nbr  string // normalized neighbor system ID, empty if adjacency down
	nhw  string // normalized neighbor hardware address, empty if absent
	node string // owning node system ID
}

// Build assembles the directed domain graph from one record per node.
// Records are a snapshot; the returned graph is immutable and a rebuild
// means calling Build again with fresh records.
func Build(records []NodeRecord, cfg BuildConfig) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger

	nodes := make(map[string]*Node)
	ifaces := make(map[string][]localIface)
	sidOwner := make(map[uint32]string)

	// Pass 1: node set, deduplicated by system ID, Node-SIDs resolved once.
	for i := range records {
		rec := &records[i]
		id, err := NormalizeSystemID(rec.SystemID)
		if err != nil {
			return nil, &BuildError{SystemID: rec.SystemID, Err: err}
		}
		if _, ok := nodes[id]; ok {
			log.Warn("duplicate record for node, keeping first", "system_id", id)
			continue
		}
		nodeSID, err := rec.SRGB.Resolve(rec.NodeSIDIndex)
		if err != nil {
			return nil, &BuildError{SystemID: id, Err: fmt.Errorf("node-sid: %w", err)}
		}
		if owner, dup := sidOwner[nodeSID]; dup {
			return nil, &BuildError{SystemID: id, Err: fmt.Errorf("node-sid label %d already allocated to %s", nodeSID, owner)}
		}
		sidOwner[nodeSID] = id

		nodes[id] = &Node{
			SystemID: id,
			Name:     rec.Hostname,
			Host:     rec.Host,
			SRGB:     rec.SRGB,
			NodeSID:  nodeSID,
		}

		for _, ir := range rec.Interfaces {
			li := localIface{rec: ir, node: id}
			if ir.HardwareAddr != "" {
				hw, err := NormalizeHardwareAddr(ir.HardwareAddr)
				if err != nil {
					return nil, &BuildError{SystemID: id, Interface: ir.Name, Err: err}
				}
				li.hw = hw
			}
			if ir.AdjacencyUp {
				nbr, err := NormalizeSystemID(ir.NeighborSystemID)
				if err != nil {
					return nil, &BuildError{SystemID: id, Interface: ir.Name, Err: err}
				}
				li.nbr = nbr
				if ir.NeighborHardwareAddr != "" {
					nhw, err := NormalizeHardwareAddr(ir.NeighborHardwareAddr)
					if err != nil {
						return nil, &BuildError{SystemID: id, Interface: ir.Name, Err: err}
					}
					li.nhw = nhw
				}
			}
			ifaces[id] = append(ifaces[id], li)
		}
	}

	// Pass 2: directed links. Each side is built from its own record only;
	// asymmetric adjacencies stay one-directional.
	var links []*Link
	pairCount := make(map[[2]string]int)
	for id, node := range nodes {
		for _, li := range ifaces[id] {
			if !li.rec.AdjacencyUp {
				log.Debug("adjacency down, skipping interface", "system_id", id, "interface", li.rec.Name)
				continue
			}
			peerIface, err := resolvePeer(li, nodes, ifaces)
			if err != nil {
				if cfg.Policy == PolicyDegraded {
					log.Warn("dropping unresolvable adjacency", "system_id", id, "interface", li.rec.Name, "error", err)
					continue
				}
				return nil, &BuildError{SystemID: id, Interface: li.rec.Name, Err: err}
			}
			peer := nodes[li.nbr]
			adjSID, err := node.SRGB.Resolve(li.rec.AdjSIDIndex)
			if err != nil {
				if cfg.Policy == PolicyDegraded {
					log.Warn("dropping adjacency with out-of-range adj-sid", "system_id", id, "interface", li.rec.Name, "error", err)
					continue
				}
				return nil, &BuildError{SystemID: id, Interface: li.rec.Name, Err: err}
			}

			key := [2]string{id, peer.SystemID}
			pairCount[key]++
			if pairCount[key] > 2 {
				err := &AmbiguousPeerError{SystemID: id, Interface: li.rec.Name, Neighbor: peer.SystemID, Candidates: pairCount[key]}
				if cfg.Policy == PolicyDegraded {
					log.Warn("dropping adjacency beyond parallel link limit", "system_id", id, "interface", li.rec.Name, "error", err)
					continue
				}
				return nil, &BuildError{SystemID: id, Interface: li.rec.Name, Err: err}
			}

			links = append(links, &Link{
				ID:             uuid.New(),
				Local:          node,
				Peer:           peer,
				LocalInterface: li.rec.Name,
				PeerInterface:  peerIface,
				Metric:         li.rec.Metric,
				AdjSID:         adjSID,
			})
		}
	}

	log.Info("topology built", "nodes", len(nodes), "links", len(links), "policy", cfg.Policy.String())
	return newGraph(nodes, links), nil
}

// resolvePeer finds the remote interface name for an up adjacency. The
// neighbor-advertised hardware address is the disambiguator between the up
// to two parallel P2P interfaces a node pair may carry.
func resolvePeer(li localIface, nodes map[string]*Node, ifaces map[string][]localIface) (string, error) {
	if _, ok := nodes[li.nbr]; !ok {
		return "", &UnresolvedPeerError{SystemID: li.node, Interface: li.rec.Name, Neighbor: li.nbr}
	}

	// Exact match on the hardware address the neighbor advertised to us.
	// The match ignores the peer side's adjacency state: an interface whose
	// own adjacency has not converged yet is still identified by its address,
	// and the resulting edge stays one-directional.
	if li.nhw != "" {
		var matched []localIface
		for _, pi := range ifaces[li.nbr] {
			if pi.hw == li.nhw {
				matched = append(matched, pi)
			}
		}
		switch len(matched) {
		case 1:
			return matched[0].rec.Name, nil
		case 0:
			return "", &UnresolvedPeerError{SystemID: li.node, Interface: li.rec.Name, Neighbor: li.nbr}
		default:
			return "", &AmbiguousPeerError{SystemID: li.node, Interface: li.rec.Name, Neighbor: li.nbr, Candidates: len(matched)}
		}
	}

	// No advertised hardware address: only an unambiguous single candidate
	// among the peer interfaces facing us can be accepted.
	var facing []localIface
	for _, pi := range ifaces[li.nbr] {
		if pi.rec.AdjacencyUp && pi.nbr == li.node {
			facing = append(facing, pi)
		}
	}
	switch len(facing) {
	case 1:
		return facing[0].rec.Name, nil
	case 0:
		return "", &UnresolvedPeerError{SystemID: li.node, Interface: li.rec.Name, Neighbor: li.nbr}
	default:
		return "", &AmbiguousPeerError{SystemID: li.node, Interface: li.rec.Name, Neighbor: li.nbr, Candidates: len(facing)}
	}
}
