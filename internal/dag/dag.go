// Package dag holds the dependency graph between exported database objects.
// Node IDs are schema-qualified object names; an edge parent -> child means
// the child's source refers to the parent, so the parent must be built first.
package dag

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Node is one object in the graph.
type Node struct {
	// ID is the schema-qualified object name.
	ID string
	// Data holds caller-defined payload (the exported tree entry).
	Data any
}

// Graph is a directed graph of build dependencies.
type Graph struct {
	nodes    map[string]*Node
	children map[string][]string // parent -> dependents
	parents  map[string][]string // child -> dependencies
}

// CycleError is returned when the graph cannot be ordered.
type CycleError struct {
	// Path lists the nodes of one cycle; the first node is repeated at the end.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode adds a node, or replaces the payload of an existing one.
func (g *Graph) AddNode(id string, data any) {
	if n, ok := g.nodes[id]; ok {
		n.Data = data
		return
	}
	g.nodes[id] = &Node{ID: id, Data: data}
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// AddEdge records that child depends on parent. Repeated edges are ignored.
func (g *Graph) AddEdge(parentID, childID string) error {
	if !g.HasNode(parentID) {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if !g.HasNode(childID) {
		return fmt.Errorf("child node %q does not exist", childID)
	}
	if parentID == childID {
		return fmt.Errorf("self-loop detected: %s", parentID)
	}
	if slices.Contains(g.children[parentID], childID) {
		return nil
	}
	g.children[parentID] = append(g.children[parentID], childID)
	g.parents[childID] = append(g.parents[childID], parentID)
	return nil
}

// GetParents returns the dependencies of id, sorted.
func (g *Graph) GetParents(id string) []string {
	return sortedCopy(g.parents[id])
}

// GetChildren returns the dependents of id, sorted.
func (g *Graph) GetChildren(id string) []string {
	return sortedCopy(g.children[id])
}

// NodeIDs returns every node ID, sorted.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, c := range g.children {
		n += len(c)
	}
	return n
}

// GetExecutionLevels groups nodes into build waves. Level 0 holds nodes with no
// dependencies; every node sits one level after its deepest dependency.
// Each level is sorted. A cycle yields a *CycleError.
func (g *Graph) GetExecutionLevels() ([][]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		indegree[id] = len(g.parents[id])
	}

	var current []string
	for id, d := range indegree {
		if d == 0 {
			current = append(current, id)
		}
	}

	var levels [][]string
	placed := 0
	for len(current) > 0 {
		sort.Strings(current)
		levels = append(levels, current)
		placed += len(current)

		var next []string
		for _, id := range current {
			for _, child := range g.children[id] {
				indegree[child]--
				if indegree[child] == 0 {
					next = append(next, child)
				}
			}
		}
		current = next
	}

	if placed != len(g.nodes) {
		return nil, &CycleError{Path: g.findCycle(indegree)}
	}
	return levels, nil
}

// TopologicalSort returns node IDs with every dependency before its dependents.
func (g *Graph) TopologicalSort() ([]string, error) {
	levels, err := g.GetExecutionLevels()
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(g.nodes))
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// findCycle walks parent links among nodes left unplaced by GetExecutionLevels.
// Every such node has an unplaced parent, so the walk must revisit a node.
func (g *Graph) findCycle(indegree map[string]int) []string {
	var start string
	for _, id := range g.NodeIDs() {
		if indegree[id] > 0 {
			start = id
			break
		}
	}
	if start == "" {
		return nil
	}

	seen := map[string]int{}
	var walk []string
	for id := start; ; {
		if at, ok := seen[id]; ok {
			return rotateCycle(walk[at:])
		}
		seen[id] = len(walk)
		walk = append(walk, id)

		next := ""
		for _, p := range g.GetParents(id) {
			if indegree[p] > 0 {
				next = p
				break
			}
		}
		if next == "" {
			return walk
		}
		id = next
	}
}

// rotateCycle turns a parent-walk into dependency order starting at the
// smallest ID, closing the loop by repeating the first node.
func rotateCycle(walk []string) []string {
	cycle := slices.Clone(walk)
	slices.Reverse(cycle)
	start := 0
	for i, id := range cycle {
		if id < cycle[start] {
			start = i
		}
	}
	out := make([]string, 0, len(cycle)+1)
	out = append(out, cycle[start:]...)
	out = append(out, cycle[:start]...)
	return append(out, out[0])
}

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	sort.Strings(out)
	return out
}
