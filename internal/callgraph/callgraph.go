// Package callgraph exports extraction results as lattice graphs for
// rendering and downstream analysis.
package callgraph

import (
	"fmt"

	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"bincap/internal/addr"
	"bincap/internal/extract"
)

// Build constructs the module call graph from function handles. Each
// function becomes a node and each call-site target becomes an edge.
// The handles must come from a completed Functions enumeration so the
// edge sets are fully populated.
func Build(ex extract.Extractor, funcs []*extract.FunctionHandle) *lattice.Graph {
	g := &lattice.Graph{}
	for _, f := range funcs {
		caller := NodeName(ex, f.Address)
		g.Nodes = append(g.Nodes, caller)
		for _, target := range extract.SortedAddrs(f.State.CallsFrom) {
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: caller,
				Callee: NodeName(ex, target),
			})
		}
	}
	g.Dedup()
	return g
}

// NodeName labels a function address for graph display: the symbolic
// name when one resolves, otherwise a stable synthetic label.
func NodeName(ex extract.Extractor, a addr.Address) string {
	if name, ok := ex.FunctionName(a); ok {
		return name
	}
	switch v := a.(type) {
	case addr.Absolute:
		return fmt.Sprintf("sub_%x", uint64(v))
	case addr.Token:
		return fmt.Sprintf("token_0x%08x", uint32(v))
	default:
		return a.String()
	}
}

// DOT renders the call graph in Graphviz DOT format.
func DOT(g *lattice.Graph, title string) string {
	return render.DOT(g, title)
}
