package collector

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/srlabs/srtopo/pkg/sr"
	"github.com/srlabs/srtopo/pkg/topology"
)

// jsonSnapshot is the top-level JSON structure of a domain snapshot.
type jsonSnapshot struct {
	Domains map[string]jsonDomain `json:"domains"`
}

// jsonDomain is a routing domain containing ISIS instances.
type jsonDomain struct {
	Instances map[string]jsonInstance `json:"instances"`
}

// jsonInstance is an ISIS instance with its node database.
type jsonInstance struct {
	Nodes map[string]jsonNode `json:"nodes"`
}

// jsonNode is one router's advertised state, keyed by system ID.
type jsonNode struct {
	Hostname       jsonHostname       `json:"hostname"`
	ManagementAddr string             `json:"managementAddr"`
	SegmentRouting jsonSegmentRouting `json:"segmentRouting"`
	Interfaces     []jsonInterface    `json:"interfaces"`
}

// jsonHostname contains the router hostname.
type jsonHostname struct {
	Name string `json:"name"`
}

// jsonSegmentRouting contains the node's SR capabilities.
type jsonSegmentRouting struct {
	SRGBBase     uint32 `json:"srgbBase"`
	SRGBRange    uint32 `json:"srgbRange"`
	NodeSIDIndex int    `json:"nodeSidIndex"`
}

// jsonInterface is one ISIS interface with its adjacency state.
type jsonInterface struct {
	Name               string `json:"name"`
	MACAddress         string `json:"macAddress"`
	Metric             uint32 `json:"metric"`
	AdjSIDIndex        int    `json:"adjSidIndex"`
	AdjacencyState     string `json:"adjacencyState"`
	NeighborSystemID   string `json:"neighborSystemId"`
	NeighborMACAddress string `json:"neighborMacAddress"`
}

// Parse parses raw snapshot JSON into one record per node.
func Parse(data []byte) ([]topology.NodeRecord, error) {
	var snap jsonSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	// Navigate: domains.default.instances.1.nodes
	defaultDomain, ok := snap.Domains["default"]
	if !ok {
		return nil, fmt.Errorf("domain 'default' not found")
	}
	instance, ok := defaultDomain.Instances["1"]
	if !ok {
		return nil, fmt.Errorf("ISIS instance '1' not found")
	}

	var records []topology.NodeRecord
	for systemID, jn := range instance.Nodes {
		rec := topology.NodeRecord{
			SystemID: systemID,
			Hostname: jn.Hostname.Name,
			Host:     jn.ManagementAddr,
			SRGB: sr.SRGB{
				Base: jn.SegmentRouting.SRGBBase,
				Size: jn.SegmentRouting.SRGBRange,
			},
			NodeSIDIndex: jn.SegmentRouting.NodeSIDIndex,
		}
		for _, ji := range jn.Interfaces {
			rec.Interfaces = append(rec.Interfaces, topology.InterfaceRecord{
				Name:                 ji.Name,
				HardwareAddr:         ji.MACAddress,
				Metric:               ji.Metric,
				AdjSIDIndex:          ji.AdjSIDIndex,
				AdjacencyUp:          strings.EqualFold(ji.AdjacencyState, "up"),
				NeighborSystemID:     ji.NeighborSystemID,
				NeighborHardwareAddr: ji.NeighborMACAddress,
			})
		}
		records = append(records, rec)
	}

	return records, nil
}
