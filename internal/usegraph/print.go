package usegraph

import (
	"cmp"
	"fmt"
	"io"
	"slices"
)

// EdgeLine is one use edge in printable form.
type EdgeLine struct {
	From string
	To   string
}

// Edges returns every use edge sorted by user, then by used package.
func (g *Graph) Edges() []EdgeLine {
	var edges []EdgeLine
	for _, node := range g.Nodes {
		for _, e := range node.Children {
			edges = append(edges, EdgeLine{From: node.Name, To: e.To.Name})
		}
	}
	slices.SortFunc(edges, func(a, b EdgeLine) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	return edges
}

// WriteEdges prints the edges in "user used" format, one per line. Pending
// packages are marked with a trailing "?".
func (g *Graph) WriteEdges(w io.Writer) error {
	for _, e := range g.Edges() {
		to := e.To
		if g.Nodes[to].Pending {
			to += "?"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", e.From, to); err != nil {
			return err
		}
	}
	return nil
}
