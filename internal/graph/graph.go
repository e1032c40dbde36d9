// Package graph builds and traverses PreApply's resource dependency graph
//. Edge A -> B means "A depends on prerequisite
// B". Traversals use BFS with an explicit visited set so cyclic input
// (tolerated, never expected from Terraform itself) cannot cause infinite
// recursion or double-counting.
package graph

import (
	"github.com/akileshthuniki/preapply/internal/ingest"
)

// Graph is a directed graph over resource addresses.
type Graph struct {
	nodes   map[string]struct{}
	forward map[string]map[string]struct{} // A -> {B : A depends on B}
	reverse map[string]map[string]struct{} // B -> {A : A depends on B}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   map[string]struct{}{},
		forward: map[string]map[string]struct{}{},
		reverse: map[string]map[string]struct{}{},
	}
}

// AddNode registers addr as a node even if it has no edges.
func (g *Graph) AddNode(addr string) {
	g.nodes[addr] = struct{}{}
	if g.forward[addr] == nil {
		g.forward[addr] = map[string]struct{}{}
	}
	if g.reverse[addr] == nil {
		g.reverse[addr] = map[string]struct{}{}
	}
}

// AddEdge records that from depends on to. Self-loops are forbidden (I3/I4)
// and duplicate edges collapse because both sides are sets.
func (g *Graph) AddEdge(from, to string) {
	if from == to {
		return
	}
	g.AddNode(from)
	g.AddNode(to)
	g.forward[from][to] = struct{}{}
	g.reverse[to][from] = struct{}{}
}

// BuildFromPlan constructs a Graph from a normalized plan's addresses and
// resolved DependsOn sets.
func BuildFromPlan(plan *ingest.NormalizedPlan) *Graph {
	g := New()
	for _, r := range plan.Resources {
		g.AddNode(r.Address)
	}
	for _, r := range plan.Resources {
		for dep := range r.DependsOn {
			g.AddEdge(r.Address, dep)
		}
	}
	return g
}

// Nodes returns every node address in the graph.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// InDegree returns the number of distinct direct dependents of addr (i.e.
// |{A : A -> addr}|), used by the shared-resource detector.
func (g *Graph) InDegree(addr string) int {
	return len(g.reverse[addr])
}

// DirectDependents returns the set of nodes that directly depend on addr.
func (g *Graph) DirectDependents(addr string) map[string]struct{} {
	return copySet(g.reverse[addr])
}

// Downstream returns every node from which addr is reachable by following
// dependency edges forward (i.e. every direct or transitive dependent of
// addr). BFS over reverse edges.
func (g *Graph) Downstream(addr string) map[string]struct{} {
	return g.bfs(addr, g.reverse)
}

// Upstream returns every node reachable from addr by following its
// dependency edges (its direct or transitive prerequisites). BFS over
// forward edges.
func (g *Graph) Upstream(addr string) map[string]struct{} {
	return g.bfs(addr, g.forward)
}

func (g *Graph) bfs(start string, adjacency map[string]map[string]struct{}) map[string]struct{} {
	visited := map[string]struct{}{}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range adjacency[cur] {
			// The start node is never part of its own result, even on a cycle.
			if next == start {
				continue
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return visited
}

func copySet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
