// Package metrics exposes the process's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildInfo carries version metadata as labels on a constant gauge.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "srtopo_build_info",
		Help: "Build metadata for the running srtopo binary.",
	}, []string{"version", "commit"})

	// CollectionDuration observes how long a full domain collection takes.
	CollectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "srtopo_collection_duration_seconds",
		Help:    "Duration of a full domain collection.",
		Buckets: prometheus.DefBuckets,
	})

	// CollectionFailures counts collections that returned an error.
	CollectionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "srtopo_collection_failures_total",
		Help: "Number of failed domain collections.",
	})

	// TopologyNodes reports the node count of the last built topology.
	TopologyNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "srtopo_topology_nodes",
		Help: "Nodes in the last built topology.",
	})

	// TopologyLinks reports the directed link count of the last built topology.
	TopologyLinks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "srtopo_topology_links",
		Help: "Directed links in the last built topology.",
	})
)
