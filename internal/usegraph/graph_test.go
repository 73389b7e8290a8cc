package usegraph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/lispkg/internal/namespace"
	"martianoff/lispkg/lisperr"
)

func newRegistry(t *testing.T) *namespace.Registry {
	t.Helper()
	return namespace.NewRegistry(namespace.DefaultOptions())
}

func TestNewGraph(t *testing.T) {
	g := NewGraph()
	a := g.AddNode("A")
	assert.Same(t, a, g.AddNode("A"))
	assert.Len(t, g.Nodes, 1)
	assert.Nil(t, g.GetNode("B"))
}

func TestGraph_AddEdge(t *testing.T) {
	g := NewGraph()
	a := g.AddNode("A")
	b := g.AddNode("B")

	edge := g.AddEdge(a, b)
	assert.Same(t, a, edge.From)
	assert.Same(t, b, edge.To)
	assert.Equal(t, []string{"B"}, a.Uses())
	assert.Equal(t, []string{"A"}, b.UsedBy())
}

func TestBuild(t *testing.T) {
	r := newRegistry(t)
	app, err := r.MakePackage("APP", namespace.MakeOptions{Use: []any{"LISP", "LATER"}})
	require.NoError(t, err)
	x, _, _ := r.Intern("X", app)
	require.NoError(t, r.Export(app, x))
	r.Intern("Y", app)

	g, err := Build(r.Snapshot())
	require.NoError(t, err)

	names := make([]string, 0, len(g.Nodes))
	for _, n := range g.All() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"KEYWORD", "LISP", "USER", "APP", "LATER"}, names)

	node := g.GetNode("APP")
	assert.Equal(t, []string{"LISP", "LATER"}, node.Uses())
	assert.Equal(t, 1, node.External)
	assert.Equal(t, 1, node.Internal)
	assert.True(t, g.GetNode("LATER").Pending)
	assert.ElementsMatch(t, []string{"USER", "APP"}, g.GetNode("LISP").UsedBy())
}

func TestBuildReportsOneSidedEdges(t *testing.T) {
	snap := namespace.Snapshot{Packages: []namespace.PackageSnapshot{
		{Name: "A", Uses: []string{"B"}},
		{Name: "B"},
		{Name: "C", UsedBy: []string{"A"}},
	}}

	g, err := Build(snap)
	var multi *lisperr.MultiError
	require.ErrorAs(t, err, &multi)
	assert.Len(t, multi.Errors, 2)
	assert.Contains(t, err.Error(), "A uses B but is missing from its used-by list")
	assert.Contains(t, err.Error(), "C lists A as a user but A does not use it")
	assert.Equal(t, []string{"B"}, g.GetNode("A").Uses())
}

func TestDetectCycles(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		g, err := Build(newRegistry(t).Snapshot())
		require.NoError(t, err)
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("mutual use", func(t *testing.T) {
		r := newRegistry(t)
		a, _ := r.MakePackage("A", namespace.MakeOptions{})
		b, _ := r.MakePackage("B", namespace.MakeOptions{Use: []any{a}})
		require.NoError(t, r.UsePackage(a, b))

		g, err := Build(r.Snapshot())
		require.NoError(t, err)

		var cycleErr *CycleError
		require.ErrorAs(t, g.DetectCycles(), &cycleErr)
		assert.Equal(t, []string{"A", "B", "A"}, cycleErr.Cycle)
		assert.Equal(t, "use cycle detected: A -> B -> A", cycleErr.Error())
	})
}

func TestFindAllCycles(t *testing.T) {
	g := NewGraph()
	a, b, c, d := g.AddNode("A"), g.AddNode("B"), g.AddNode("C"), g.AddNode("D")
	g.AddEdge(a, b)
	g.AddEdge(b, a)
	g.AddEdge(c, d)
	g.AddEdge(d, c)

	cycles := g.FindAllCycles()
	assert.Equal(t, [][]string{{"A", "B", "A"}, {"C", "D", "C"}}, cycles)
}

func TestTopologicalSort(t *testing.T) {
	g := NewGraph()
	app, lib, base := g.AddNode("APP"), g.AddNode("LIB"), g.AddNode("BASE")
	g.AddEdge(app, lib)
	g.AddEdge(app, base)
	g.AddEdge(lib, base)

	sorted, err := g.TopologicalSort()
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, n := range sorted {
		pos[n.Name] = i
	}
	assert.Less(t, pos["BASE"], pos["LIB"])
	assert.Less(t, pos["LIB"], pos["APP"])

	g.AddEdge(base, app)
	_, err = g.TopologicalSort()
	var cycleErr *CycleError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestWriteEdges(t *testing.T) {
	r := newRegistry(t)
	_, err := r.MakePackage("APP", namespace.MakeOptions{Use: []any{"LISP", "LATER"}})
	require.NoError(t, err)

	g, err := Build(r.Snapshot())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.WriteEdges(&buf))
	assert.Equal(t, "APP LATER?\nAPP LISP\nUSER LISP\n", buf.String())
}
