// Package graph builds executable orderings over persisted workflow
// node/edge sets.
package graph

import "github.com/docpipe/docpipe/pkg/models"

// Graph holds adjacency lookups for one workflow definition. Outgoing and
// Incoming cover every node, including those with no edges, so downstream
// lookups never need existence checks.
type Graph struct {
	Nodes    []*models.Node
	Outgoing map[string][]*models.Edge
	Incoming map[string][]*models.Edge
}

// Build converts a flat node/edge list into adjacency and reverse-adjacency
// maps.
func Build(nodes []*models.Node, edges []*models.Edge) *Graph {
	g := &Graph{
		Nodes:    nodes,
		Outgoing: make(map[string][]*models.Edge, len(nodes)),
		Incoming: make(map[string][]*models.Edge, len(nodes)),
	}

	for _, node := range nodes {
		g.Outgoing[node.ID] = nil
		g.Incoming[node.ID] = nil
	}

	for _, edge := range edges {
		g.Outgoing[edge.Source] = append(g.Outgoing[edge.Source], edge)
		g.Incoming[edge.Target] = append(g.Incoming[edge.Target], edge)
	}

	return g
}

// Sort returns the nodes in topological order using Kahn's algorithm. The
// queue is seeded with zero in-degree nodes in their original list order, so
// the result is deterministic for a fixed input order with ties broken by
// insertion order. Nodes that never reach in-degree zero (members of a
// cycle, or anything downstream of one) are not emitted; their ids come back
// in excluded so callers can surface the drop.
func (g *Graph) Sort() (ordered []*models.Node, excluded []string) {
	inDegree := make(map[string]int, len(g.Nodes))
	byID := make(map[string]*models.Node, len(g.Nodes))

	for _, node := range g.Nodes {
		inDegree[node.ID] = len(g.Incoming[node.ID])
		byID[node.ID] = node
	}

	queue := make([]string, 0, len(g.Nodes))

	for _, node := range g.Nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	ordered = make([]*models.Node, 0, len(g.Nodes))
	emitted := make(map[string]bool, len(g.Nodes))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		ordered = append(ordered, byID[id])
		emitted[id] = true

		for _, edge := range g.Outgoing[id] {
			inDegree[edge.Target]--
			if inDegree[edge.Target] == 0 {
				queue = append(queue, edge.Target)
			}
		}
	}

	for _, node := range g.Nodes {
		if !emitted[node.ID] {
			excluded = append(excluded, node.ID)
		}
	}

	return ordered, excluded
}
