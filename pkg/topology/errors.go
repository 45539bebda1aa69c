package topology

import "fmt"

// UnresolvedPeerError reports an up adjacency whose remote interface could
// not be matched against the peer node's interface list.
type UnresolvedPeerError struct {
	SystemID  string
	Interface string
	Neighbor  string
}

func (e *UnresolvedPeerError) Error() string {
	return fmt.Sprintf("node %s interface %s: no peer interface found on neighbor %s", e.SystemID, e.Interface, e.Neighbor)
}

// AmbiguousPeerError reports a node pair whose candidate interface matches
// exceed the two-parallel-P2P-link limit, or cannot be separated by the
// advertised hardware address.
type AmbiguousPeerError struct {
	SystemID   string
	Interface  string
	Neighbor   string
	Candidates int
}

func (e *AmbiguousPeerError) Error() string {
	return fmt.Sprintf("node %s interface %s: %d candidate peer interfaces on neighbor %s", e.SystemID, e.Interface, e.Candidates, e.Neighbor)
}

// UnknownNodeError reports a query that names a node absent from the graph.
type UnknownNodeError struct {
	Name string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("node %q not present in the topology", e.Name)
}

// NoPathError reports that no directed route connects src to dst. The
// reverse direction may still be connected.
type NoPathError struct {
	Src string
	Dst string
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no directed path from %s to %s", e.Src, e.Dst)
}

// BuildError wraps the first failure encountered while assembling the
// topology, naming the offending node and interface where known.
type BuildError struct {
	SystemID  string
	Interface string
	Err       error
}

func (e *BuildError) Error() string {
	switch {
	case e.SystemID != "" && e.Interface != "":
		return fmt.Sprintf("topology build failed at node %s interface %s: %v", e.SystemID, e.Interface, e.Err)
	case e.SystemID != "":
		return fmt.Sprintf("topology build failed at node %s: %v", e.SystemID, e.Err)
	default:
		return fmt.Sprintf("topology build failed: %v", e.Err)
	}
}

func (e *BuildError) Unwrap() error { return e.Err }
