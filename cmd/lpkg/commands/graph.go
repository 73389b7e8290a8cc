package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"martianoff/lispkg/internal/usegraph"
)

var (
	graphCycles bool
	graphTopo   bool
)

var graphCmd = &cobra.Command{
	Use:   "graph [script...]",
	Short: "Print the package use graph",
	Long: `Run command scripts, then print the use graph in text format.

Each line shows a package and one package it uses. Packages that are only
declared are marked with "?".

Examples:
  lpkg graph packages.lisp
  lpkg graph --cycles packages.lisp`,
	Run: runGraph,
}

func init() {
	graphCmd.Flags().BoolVar(&graphCycles, "cycles", false, "List every use cycle")
	graphCmd.Flags().BoolVar(&graphTopo, "topo", false, "List packages with used packages first")
}

func runGraph(cmd *cobra.Command, args []string) {
	s, err := newSession(io.Discard)
	if err != nil {
		fail("Error", err)
	}
	if err := s.runFiles(args); err != nil {
		fail("Error", err)
	}

	g, err := usegraph.Build(s.reg.Snapshot())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	switch {
	case graphCycles:
		for _, cycle := range g.FindAllCycles() {
			fmt.Println(strings.Join(cycle, " -> "))
		}
	case graphTopo:
		nodes, err := g.TopologicalSort()
		if err != nil {
			fail("Error", err)
		}
		for _, n := range nodes {
			fmt.Println(n.Name)
		}
	default:
		if err := g.WriteEdges(os.Stdout); err != nil {
			fail("Error", err)
		}
	}
}
