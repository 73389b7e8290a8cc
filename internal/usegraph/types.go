// Package usegraph provides read-only analysis of the package use graph.
package usegraph

import (
	"fmt"
	"slices"

	"martianoff/lispkg/internal/namespace"
	"martianoff/lispkg/lisperr"
)

// Node represents a package in the use graph.
type Node struct {
	Name     string
	Pending  bool // Declared but not yet made
	Closed   bool
	External int     // Number of external symbols
	Internal int     // Number of internal symbols
	Children []*Edge // Packages this one uses
	Parents  []*Edge // Packages using this one
}

// Edge represents a use relationship: From uses To.
type Edge struct {
	From *Node
	To   *Node
}

// Graph is the use graph of a registry at one point in time.
type Graph struct {
	Nodes map[string]*Node
	order []string // Creation order
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode adds a node to the graph if it doesn't exist.
// Returns the existing or newly created node.
func (g *Graph) AddNode(name string) *Node {
	if existing, ok := g.Nodes[name]; ok {
		return existing
	}
	node := &Node{Name: name}
	g.Nodes[name] = node
	g.order = append(g.order, name)
	return node
}

// AddEdge records that from uses to.
func (g *Graph) AddEdge(from, to *Node) *Edge {
	edge := &Edge{From: from, To: to}
	from.Children = append(from.Children, edge)
	to.Parents = append(to.Parents, edge)
	return edge
}

// GetNode returns the node for a package name, or nil if not found.
func (g *Graph) GetNode(name string) *Node {
	return g.Nodes[name]
}

// All returns every node in the order packages were added.
func (g *Graph) All() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, name := range g.order {
		nodes[i] = g.Nodes[name]
	}
	return nodes
}

// Uses returns the names of the packages n uses, in use-list order.
func (n *Node) Uses() []string {
	names := make([]string, len(n.Children))
	for i, e := range n.Children {
		names[i] = e.To.Name
	}
	return names
}

// UsedBy returns the names of the packages using n.
func (n *Node) UsedBy() []string {
	names := make([]string, len(n.Parents))
	for i, e := range n.Parents {
		names[i] = e.From.Name
	}
	return names
}

// Build creates the graph of snap. Use edges are taken from the use-lists;
// every used-by list is checked against them and each disagreement is
// reported in the returned *lisperr.MultiError. The graph is complete even
// when an error is returned.
func Build(snap namespace.Snapshot) (*Graph, error) {
	g := NewGraph()
	for _, p := range snap.Packages {
		n := g.AddNode(p.Name)
		n.Closed = p.Closed
		n.External = len(p.External)
		n.Internal = len(p.Internal)
	}
	for _, name := range snap.Pending {
		g.AddNode(name).Pending = true
	}
	for _, p := range snap.Packages {
		from := g.Nodes[p.Name]
		for _, u := range p.Uses {
			to := g.GetNode(u)
			if to == nil {
				to = g.AddNode(u)
				to.Pending = true
			}
			g.AddEdge(from, to)
		}
	}

	var errs lisperr.MultiError
	for _, p := range snap.Packages {
		n := g.Nodes[p.Name]
		got := n.UsedBy()
		for _, d := range p.UsedBy {
			if !slices.Contains(got, d) {
				errs.Errors = append(errs.Errors, fmt.Errorf("%s lists %s as a user but %s does not use it", p.Name, d, d))
			}
		}
		for _, d := range got {
			if !slices.Contains(p.UsedBy, d) {
				errs.Errors = append(errs.Errors, fmt.Errorf("%s uses %s but is missing from its used-by list", d, p.Name))
			}
		}
	}
	return g, errs.ErrorOrNil()
}
