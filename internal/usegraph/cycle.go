package usegraph

import (
	"fmt"
	"strings"
)

// CycleError represents a use cycle. Cycles are legal between packages; the
// error only matters to callers that need a topological order.
type CycleError struct {
	Cycle []string // Package names forming the cycle
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("use cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// DetectCycles checks for cycles in the use graph.
// Returns nil if no cycles are found, or a CycleError describing the first cycle found.
func (g *Graph) DetectCycles() error {
	// 0 = unvisited, 1 = in progress, 2 = done
	state := make(map[string]int)
	path := make([]string, 0)

	var visit func(node *Node) error
	visit = func(node *Node) error {
		if state[node.Name] == 2 {
			return nil
		}
		if state[node.Name] == 1 {
			for i, p := range path {
				if p == node.Name {
					cycle := append(append([]string(nil), path[i:]...), node.Name)
					return &CycleError{Cycle: cycle}
				}
			}
			return &CycleError{Cycle: []string{node.Name}}
		}

		state[node.Name] = 1
		path = append(path, node.Name)
		for _, edge := range node.Children {
			if err := visit(edge.To); err != nil {
				return err
			}
		}
		state[node.Name] = 2
		path = path[:len(path)-1]
		return nil
	}

	for _, node := range g.All() {
		if err := visit(node); err != nil {
			return err
		}
	}
	return nil
}

// FindAllCycles finds all cycles in the graph.
// This is more expensive than DetectCycles but provides complete information.
func (g *Graph) FindAllCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make([]string, 0)

	var dfs func(node *Node)
	dfs = func(node *Node) {
		visited[node.Name] = true
		recStack[node.Name] = true
		path = append(path, node.Name)

		for _, edge := range node.Children {
			child := edge.To
			if !visited[child.Name] {
				dfs(child)
			} else if recStack[child.Name] {
				for i, p := range path {
					if p == child.Name {
						cycle := make([]string, len(path)-i+1)
						copy(cycle, path[i:])
						cycle[len(cycle)-1] = child.Name
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}

		path = path[:len(path)-1]
		recStack[node.Name] = false
	}

	for _, node := range g.All() {
		if !visited[node.Name] {
			dfs(node)
		}
	}
	return cycles
}

// TopologicalSort returns nodes with every used package before its users.
// Returns an error if a cycle is detected.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	var result []*Node
	visited := make(map[string]bool)

	var visit func(node *Node)
	visit = func(node *Node) {
		if visited[node.Name] {
			return
		}
		visited[node.Name] = true
		for _, edge := range node.Children {
			visit(edge.To)
		}
		result = append(result, node)
	}

	for _, node := range g.All() {
		visit(node)
	}
	return result, nil
}
