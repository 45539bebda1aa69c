package topology

import (
	"container/heap"
	"sort"
)

// Graph is the assembled domain snapshot: nodes plus labeled directed
// links. It is immutable once built and safe for concurrent reads.
type Graph struct {
	nodes  map[string]*Node // by system ID
	byName map[string]*Node
	out    map[string][]*Link // outgoing links by local system ID
	links  []*Link
	order  []string // system IDs ascending
}

func newGraph(nodes map[string]*Node, links []*Link) *Graph {
	g := &Graph{
		nodes:  nodes,
		byName: make(map[string]*Node, len(nodes)),
		out:    make(map[string][]*Link),
		links:  links,
	}
	for id, n := range nodes {
		g.byName[n.Name] = n
		g.order = append(g.order, id)
	}
	sort.Strings(g.order)
	for _, l := range links {
		g.out[l.Local.SystemID] = append(g.out[l.Local.SystemID], l)
	}
	return g
}

// Nodes returns the node set ordered by ascending system ID.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// DirectedLinks returns every directed link. Iteration order is
// unspecified; formatters impose their own.
func (g *Graph) DirectedLinks() []*Link {
	return g.links
}

// NodeByName looks a node up by its ISIS hostname.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// preferLink is the total order over parallel links between the same
// ordered node pair: lower metric first, then the lexicographically
// smaller local interface name. SPF over parallel edges and adjacency
// matrix cell selection both use it, so the two can never disagree.
func preferLink(a, b *Link) bool {
	if a.Metric != b.Metric {
		return a.Metric < b.Metric
	}
	return a.LocalInterface < b.LocalInterface
}

// spfItem is a priority queue entry for Dijkstra.
type spfItem struct {
	id    string
	dist  uint64
	key   string // hop sequence of system IDs, the deterministic tie-break
	index int
}

type spfQueue []*spfItem

func (q spfQueue) Len() int { return len(q) }
func (q spfQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].key < q[j].key
}
func (q spfQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *spfQueue) Push(x any) {
	it := x.(*spfItem)
	it.index = len(*q)
	*q = append(*q, it)
}
func (q *spfQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// ShortestPath runs Dijkstra from src to dst (both ISIS hostnames) over the
// directed, non-negatively weighted link set and returns the node sequence.
// Ties between equal-cost paths are broken toward the path whose hop
// sequence of system IDs is lexicographically smallest, which makes the
// result independent of link discovery order. Parallel links are separate
// edges; relaxation naturally picks the preferLink winner.
func (g *Graph) ShortestPath(src, dst string) ([]*Node, error) {
	from, ok := g.byName[src]
	if !ok {
		return nil, &UnknownNodeError{Name: src}
	}
	to, ok := g.byName[dst]
	if !ok {
		return nil, &UnknownNodeError{Name: dst}
	}
	if from == to {
		return []*Node{from}, nil
	}

	dist := map[string]uint64{from.SystemID: 0}
	key := map[string]string{from.SystemID: from.SystemID}
	prev := make(map[string]string)
	done := make(map[string]bool)

	q := &spfQueue{}
	heap.Init(q)
	heap.Push(q, &spfItem{id: from.SystemID, dist: 0, key: from.SystemID})

	for q.Len() > 0 {
		cur := heap.Pop(q).(*spfItem)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if cur.id == to.SystemID {
			break
		}
		for _, l := range g.out[cur.id] {
			next := l.Peer.SystemID
			if done[next] {
				continue
			}
			nd := cur.dist + uint64(l.Metric)
			nk := cur.key + "|" + next
			d, seen := dist[next]
			if !seen || nd < d || (nd == d && nk < key[next]) {
				dist[next] = nd
				key[next] = nk
				prev[next] = cur.id
				heap.Push(q, &spfItem{id: next, dist: nd, key: nk})
			}
		}
	}

	if !done[to.SystemID] {
		return nil, &NoPathError{Src: src, Dst: dst}
	}

	var path []*Node
	for id := to.SystemID; ; id = prev[id] {
		path = append(path, g.nodes[id])
		if id == from.SystemID {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
