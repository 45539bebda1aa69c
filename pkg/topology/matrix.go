package topology

import (
	"fmt"
	"strings"
)

const matrixCellWidth = 40

// AdjacencyMatrixText renders the directed adjacency matrix, rows and
// columns ordered by ascending system ID. Cell (i, j) carries the selected
// link i -> j or stays blank when none exists. Fixed-width cells and the
// blank line between rows match the original tool's output exactly.
func (g *Graph) AdjacencyMatrixText() string {
	best := make(map[[2]string]*Link)
	for _, l := range g.links {
		key := [2]string{l.Local.SystemID, l.Peer.SystemID}
		if cur, ok := best[key]; !ok || preferLink(l, cur) {
			best[key] = l
		}
	}

	var sb strings.Builder
	for _, i := range g.order {
		for _, j := range g.order {
			cell := ""
			if l, ok := best[[2]string{i, j}]; ok {
				cell = l.String()
			}
			fmt.Fprintf(&sb, "%-*s| ", matrixCellWidth, cell)
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// FormatPath renders a shortest-path result as the single line the CLI
// prints, e.g.
//
//	Path from sre1 (20001) to sre5 (20005): [<Name: sre1, SystemID: 0100.0000.0001>, ...]
func FormatPath(path []*Node) string {
	if len(path) == 0 {
		return ""
	}
	hops := make([]string, len(path))
	for i, n := range path {
		hops[i] = fmt.Sprintf("<Name: %s, SystemID: %s>", n.Name, n.SystemID)
	}
	src, dst := path[0], path[len(path)-1]
	return fmt.Sprintf("Path from %s to %s: [%s]", src, dst, strings.Join(hops, ", "))
}
