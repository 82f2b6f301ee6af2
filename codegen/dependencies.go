package codegen

import (
	"fmt"
	"strings"

	"github.com/signadot/enumstate/resolve"
)

// DependencyGraph represents a directed graph of schema dependencies.
// An edge A -> B means the resolved defaults of A are built from a default
// of B.
type DependencyGraph struct {
	// Nodes maps schema name to its resolution
	Nodes map[string]*resolve.Resolution

	// Edges maps schema name to the schema names it depends on
	Edges map[string][]string

	// ReverseEdges maps schema name to the schema names that depend on it
	ReverseEdges map[string][]string

	// order is the input order, used to break ties deterministically
	order []string
}

// BuildDependencyGraph builds a dependency graph from resolutions of one
// package. Dependencies are the nested schemas of the resolved defaults.
func BuildDependencyGraph(resolutions []*resolve.Resolution) *DependencyGraph {
	graph := &DependencyGraph{
		Nodes:        make(map[string]*resolve.Resolution),
		Edges:        make(map[string][]string),
		ReverseEdges: make(map[string][]string),
	}
	for _, res := range resolutions {
		name := res.Schema.Name
		graph.Nodes[name] = res
		graph.Edges[name] = []string{}
		graph.order = append(graph.order, name)
	}
	for _, res := range resolutions {
		deps := findDependencies(res, graph.Nodes)
		graph.Edges[res.Schema.Name] = deps
		for _, dep := range deps {
			graph.ReverseEdges[dep] = append(graph.ReverseEdges[dep], res.Schema.Name)
		}
	}
	return graph
}

// findDependencies lists, in first-seen order, the schemas of nodes that
// the defaults of res are built from.
func findDependencies(res *resolve.Resolution, nodes map[string]*resolve.Resolution) []string {
	var deps []string
	seen := make(map[string]bool)
	defaults := append(append([]*resolve.Default{}, res.Variants...), res.Default)
	for _, d := range defaults {
		for _, f := range d.Fields {
			if f.Nested == nil {
				continue
			}
			dep := f.Nested.Schema.Name
			if _, ok := nodes[dep]; !ok || seen[dep] || dep == res.Schema.Name {
				continue
			}
			seen[dep] = true
			deps = append(deps, dep)
		}
	}
	return deps
}

// TopologicalSort performs a topological sort on the dependency graph.
// Returns resolutions in dependency order (dependencies come before
// dependents); independent schemas keep their input order.
//
// Graphs built from resolutions are acyclic, since resolution fails with a
// CyclicDefaultError first. A cyclic graph is reported with the schemas
// left unsorted.
func TopologicalSort(graph *DependencyGraph) ([]*resolve.Resolution, error) {
	// Kahn's algorithm: the in-degree of a node is its number of dependencies.
	inDegree := make(map[string]int, len(graph.Nodes))
	var queue []string
	for _, name := range graph.order {
		inDegree[name] = len(graph.Edges[name])
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var result []*resolve.Resolution
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, graph.Nodes[node])

		for _, dependent := range graph.ReverseEdges[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(graph.Nodes) {
		var left []string
		for _, name := range graph.order {
			if inDegree[name] > 0 {
				left = append(left, name)
			}
		}
		return nil, fmt.Errorf("topological sort incomplete: processed %d of %d schemas, left %s",
			len(result), len(graph.Nodes), strings.Join(left, ", "))
	}
	return result, nil
}
