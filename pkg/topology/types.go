// Package topology reconstructs an ISIS Segment Routing domain from per-node
// management-plane records and answers shortest-path and adjacency queries
// over the resulting directed graph.
package topology

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/srlabs/srtopo/pkg/sr"
)

// Node is a router discovered in the domain, unique per ISIS system ID.
// Nodes are built once per snapshot and immutable afterwards.
type Node struct {
	SystemID string // canonical xxxx.xxxx.xxxx lower hex
	Name     string // ISIS hostname
	Host     string // management endpoint, opaque to the core
	SRGB     sr.SRGB
	NodeSID  uint32 // absolute label, resolved once from SRGB and the configured index
}

// String renders the node the way path output expects it.
func (n *Node) String() string {
	return fmt.Sprintf("%s (%d)", n.Name, n.NodeSID)
}

// Link is a directed edge local -> peer. Each side of a physical adjacency
// advertises its own Adj-SID, so the reverse direction is a separate Link
// built independently from the peer's record, and may be absent.
type Link struct {
	ID             uuid.UUID
	Local          *Node
	Peer           *Node
	LocalInterface string
	PeerInterface  string
	Metric         uint32
	AdjSID         uint32 // absolute label within Local's SRGB
}

// String renders the link the way adjacency matrix cells expect it.
func (l *Link) String() string {
	return fmt.Sprintf("%s -> %s: %d", l.Local, l.Peer, l.AdjSID)
}

// NodeRecord is the normalized per-node collection contract. The management
// client converts its hierarchical tree responses into this flat shape at
// the boundary; the core never performs schema-path lookups.
type NodeRecord struct {
	SystemID     string
	Hostname     string
	Host         string
	SRGB         sr.SRGB
	NodeSIDIndex int
	Interfaces   []InterfaceRecord
}

// InterfaceRecord is one local interface as reported by its owning node.
// Neighbor fields are only meaningful when AdjacencyUp is true.
type InterfaceRecord struct {
	Name                 string
	HardwareAddr         string
	Metric               uint32
	AdjSIDIndex          int
	AdjacencyUp          bool
	NeighborSystemID     string
	NeighborHardwareAddr string
}

// NormalizeSystemID converts the forms ISIS speakers advertise
// ("0x0100000000001", "0100.0000.0001", "0100:0000:0001") into the
// canonical dotted form xxxx.xxxx.xxxx.
func NormalizeSystemID(id string) (string, error) {
	hex := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(id), "0x"))
	hex = strings.NewReplacer(".", "", ":", "", "-", "").Replace(hex)
	if len(hex) != 12 {
		return "", fmt.Errorf("system id %q: expected 6 octets, got %d hex digits", id, len(hex))
	}
	for _, c := range hex {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("system id %q: invalid hex digit %q", id, c)
		}
	}
	return hex[0:4] + "." + hex[4:8] + "." + hex[8:12], nil
}

// NormalizeHardwareAddr converts a link-layer address ("0c:00:ab:cd:ef:01",
// "0c00.abcd.ef01") into the 0x-prefixed form used for peer correlation.
func NormalizeHardwareAddr(addr string) (string, error) {
	hex := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(addr), "0x"))
	hex = strings.NewReplacer(".", "", ":", "", "-", "").Replace(hex)
	if len(hex) != 12 {
		return "", fmt.Errorf("hardware address %q: expected 6 octets, got %d hex digits", addr, len(hex))
	}
	for _, c := range hex {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("hardware address %q: invalid hex digit %q", addr, c)
		}
	}
	return "0x" + hex, nil
}
